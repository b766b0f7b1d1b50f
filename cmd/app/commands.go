package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/notemeta/internal"
	"github.com/starford/notemeta/internal/index"
	"github.com/starford/notemeta/internal/metadata"
	"github.com/starford/notemeta/internal/note"
	"github.com/starford/notemeta/internal/storage"
)

// batchFlags select the notes a batch command rewrites.
func batchFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringSliceFlag{
			Name:  "path",
			Usage: "Sub-directory or note to process, relative to the vault (repeatable)",
		},
		&cli.BoolFlag{
			Name:  "recursive",
			Usage: "Descend into sub-directories",
			Value: true,
		},
		&cli.StringFlag{Name: "name-prefix", Usage: "Only notes whose file name starts with this"},
		&cli.StringFlag{Name: "name-suffix", Usage: "Only notes whose file name ends with this"},
		&cli.StringFlag{Name: "name-pattern", Usage: "Only notes whose file name matches this regular expression from its start"},
		&cli.StringSliceFlag{Name: "has", Usage: "Only notes holding KEY or KEY=VALUE (repeatable)"},
	}, extra...)
}

func kindFlag(usage string) cli.Flag {
	return &cli.StringFlag{Name: "kind", Usage: usage}
}

// cliEnv is what every command needs from the configuration.
type cliEnv struct {
	cfg    *internal.Config
	logger *slog.Logger
	store  *storage.FS
}

func openEnv(cmd *cli.Command) (*cliEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return &cliEnv{cfg: cfg, logger: logger, store: store}, nil
}

func parseHas(conds []string) []note.MetaQuery {
	out := make([]note.MetaQuery, 0, len(conds))
	for _, cond := range conds {
		key, value, ok := strings.Cut(cond, "=")
		q := note.MetaQuery{Key: key, Kind: metadata.KindAll}
		if ok {
			q.Values = value
		}
		out = append(out, q)
	}
	return out
}

// batchAction loads the selected notes, runs edit on their metadata,
// regenerates every note and writes the ones whose content changed.
func batchAction(edit func(cmd *cli.Command, b *note.Batch) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		update, err := env.cfg.Update.Options()
		if err != nil {
			return err
		}

		paths := cmd.StringSlice("path")
		if len(paths) == 0 {
			paths = []string{""}
		}
		ns, err := note.LoadNotes(ctx, env.store, &env.cfg.Metadata, paths, cmd.Bool("recursive"), env.cfg.Batch.Workers)
		if err != nil {
			return err
		}
		err = ns.Filter(note.Filter{
			Prefix:  cmd.String("name-prefix"),
			Suffix:  cmd.String("name-suffix"),
			Pattern: cmd.String("name-pattern"),
			HasMeta: parseHas(cmd.StringSlice("has")),
		})
		if err != nil {
			return err
		}

		if edit != nil {
			if err := edit(cmd, ns.Metadata()); err != nil {
				return err
			}
		}
		if err := ns.UpdateContent(ctx, update...); err != nil {
			return err
		}

		dryRun := cmd.Bool("dry-run")
		var changed []*note.Note
		for _, n := range ns.Notes() {
			if !n.Changed() {
				env.logger.Debug("Note unchanged", slog.String("path", n.Path))
				continue
			}
			changed = append(changed, n)
			env.logger.Info("Note changed", slog.String("path", n.Path), slog.Bool("dry_run", dryRun))
		}
		if !dryRun {
			out := note.NewNotes(changed...)
			out.Workers = env.cfg.Batch.Workers
			if err := out.Write(ctx); err != nil {
				return err
			}
		}

		env.logger.Info("Batch finished",
			slog.String("command", cmd.Name),
			slog.Int("notes", ns.Len()),
			slog.Int("changed", len(changed)),
			slog.Bool("dry_run", dryRun))
		return nil
	}
}

func optionalKind(cmd *cli.Command, fallback metadata.Kind) (metadata.Kind, error) {
	if !cmd.IsSet("kind") {
		return fallback, nil
	}
	return metadata.ParseKind(cmd.String("kind"))
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print the metadata of one note as JSON",
		ArgsUsage: "PATH",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("show: expected exactly one note path")
			}
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			n, err := note.Load(env.store, cmd.Args().First(), &env.cfg.Metadata)
			if err != nil {
				return err
			}

			out := struct {
				Path        string           `json:"path"`
				Frontmatter *metadata.Fields `json:"frontmatter"`
				Inline      *metadata.Fields `json:"inline"`
			}{n.Path, n.Metadata.Frontmatter.Fields(), n.Metadata.Inline.Fields()}

			enc := json.NewEncoder(cmd.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add values under a key",
		ArgsUsage: "KEY VALUE...",
		Flags: batchFlags(
			kindFlag(`"frontmatter", "inline" or "default" (the key's configured location)`),
			&cli.BoolFlag{Name: "overwrite", Usage: "Replace the existing values"},
			&cli.BoolFlag{Name: "allow-duplicates", Usage: "Keep values already present"},
		),
		Action: batchAction(func(cmd *cli.Command, b *note.Batch) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return fmt.Errorf("add: KEY is required")
			}
			kind, err := optionalKind(cmd, metadata.KindDefault)
			if err != nil {
				return err
			}
			var opts []metadata.AddOption
			if cmd.Bool("overwrite") {
				opts = append(opts, metadata.WithOverwrite())
			}
			if cmd.Bool("allow-duplicates") {
				opts = append(opts, metadata.WithDuplicates())
			}
			return b.Add(args[0], args[1:], kind, opts...)
		}),
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove a key, or only some of its values",
		ArgsUsage: "KEY [VALUE...]",
		Flags:     batchFlags(kindFlag(`"frontmatter", "inline" or "notemeta" (both, the default)`)),
		Action: batchAction(func(cmd *cli.Command, b *note.Batch) error {
			args := cmd.Args().Slice()
			if len(args) == 0 {
				return fmt.Errorf("remove: KEY is required")
			}
			kind, err := optionalKind(cmd, metadata.KindAll)
			if err != nil {
				return err
			}
			var values any
			if len(args) > 1 {
				values = args[1:]
			}
			return b.Remove(args[0], values, kind)
		}),
	}
}

func moveCommand() *cli.Command {
	return &cli.Command{
		Name:      "move",
		Usage:     "Move keys between frontmatter and inline fields; without --from and --to, move configured keys to their default location",
		ArgsUsage: "[KEY...]",
		Flags: batchFlags(
			&cli.StringFlag{Name: "from", Usage: `"frontmatter" or "inline"`},
			&cli.StringFlag{Name: "to", Usage: `"frontmatter" or "inline"`},
		),
		Action: batchAction(func(cmd *cli.Command, b *note.Batch) error {
			keys := cmd.Args().Slice()
			switch {
			case !cmd.IsSet("from") && !cmd.IsSet("to") && len(keys) == 0:
				return b.MoveToDefaults()
			case !cmd.IsSet("from") || !cmd.IsSet("to"):
				return fmt.Errorf("move: --from and --to are required when keys are given")
			}
			from, err := metadata.ParseKind(cmd.String("from"))
			if err != nil {
				return err
			}
			to, err := metadata.ParseKind(cmd.String("to"))
			if err != nil {
				return err
			}
			return b.Move(from, to, keys...)
		}),
	}
}

func dedupeCommand() *cli.Command {
	return &cli.Command{
		Name:      "dedupe",
		Usage:     "Remove duplicate values of the given keys, or of all keys",
		ArgsUsage: "[KEY...]",
		Flags:     batchFlags(kindFlag(`"frontmatter", "inline" or "notemeta" (both, the default)`)),
		Action: batchAction(func(cmd *cli.Command, b *note.Batch) error {
			kind, err := optionalKind(cmd, metadata.KindAll)
			if err != nil {
				return err
			}
			return b.RemoveDuplicateValues(kind, cmd.Args().Slice()...)
		}),
	}
}

func orderCommand() *cli.Command {
	return &cli.Command{
		Name:      "order",
		Usage:     "Sort keys and values",
		ArgsUsage: "[KEY...]",
		Flags: batchFlags(
			kindFlag(`"frontmatter", "inline" or "notemeta" (both, the default)`),
			&cli.StringFlag{Name: "keys", Usage: `"asc", "desc" or "none"`, Value: "asc"},
			&cli.StringFlag{Name: "values", Usage: `"asc", "desc" or "none"`, Value: "asc"},
		),
		Action: batchAction(func(cmd *cli.Command, b *note.Batch) error {
			kind, err := optionalKind(cmd, metadata.KindAll)
			if err != nil {
				return err
			}
			orderKeys, err := metadata.ParseOrder(cmd.String("keys"))
			if err != nil {
				return err
			}
			orderValues, err := metadata.ParseOrder(cmd.String("values"))
			if err != nil {
				return err
			}
			return b.Order(kind, orderKeys, orderValues, cmd.Args().Slice()...)
		}),
	}
}

func pruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Remove keys without values",
		Flags: batchFlags(kindFlag(`"frontmatter", "inline" or "notemeta" (both, the default)`)),
		Action: batchAction(func(cmd *cli.Command, b *note.Batch) error {
			kind, err := optionalKind(cmd, metadata.KindAll)
			if err != nil {
				return err
			}
			return b.RemoveEmpty(kind)
		}),
	}
}

func normalizeCommand() *cli.Command {
	return &cli.Command{
		Name:   "normalize",
		Usage:  "Rewrite notes in the configured layout without editing metadata",
		Flags:  batchFlags(),
		Action: batchAction(nil),
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Bring the SQLite metadata index in step with the vault",
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			db, err := index.Open(env.cfg.SQLite.Path)
			if err != nil {
				return fmt.Errorf("init index: %w", err)
			}
			defer db.Close()

			stats, err := index.Sync(db, env.store, &env.cfg.Metadata, env.logger)
			if err != nil {
				return err
			}
			env.logger.Info("Index synced",
				slog.Int("indexed", stats.Indexed),
				slog.Int("removed", stats.Removed),
				slog.Int("failed", stats.Failed))
			return nil
		},
	}
}

func findCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "List the notes holding a key, or a key with a value",
		ArgsUsage: "KEY [VALUE]",
		Flags:     []cli.Flag{kindFlag(`"frontmatter", "inline" or "notemeta" (both, the default)`)},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) == 0 || len(args) > 2 {
				return fmt.Errorf("find: expected KEY [VALUE]")
			}
			kind, err := optionalKind(cmd, metadata.KindAll)
			if err != nil {
				return err
			}

			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			db, err := index.Open(env.cfg.SQLite.Path)
			if err != nil {
				return fmt.Errorf("init index: %w", err)
			}
			defer db.Close()

			if _, err := index.Sync(db, env.store, &env.cfg.Metadata, env.logger); err != nil {
				return err
			}

			q := index.Query{Key: args[0]}
			if kind != metadata.KindAll {
				q.Kind = kind.String()
			}
			if len(args) == 2 {
				q.Value = &args[1]
			}
			paths, err := db.FindNotes(q)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.Root().Writer, p)
			}
			return nil
		},
	}
}
