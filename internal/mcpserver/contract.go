package mcpserver

// SyntaxGuide describes the two metadata dialects notemeta reads and writes,
// and the edit operations the edit_metadata tool accepts.
const SyntaxGuide = `# notemeta Metadata Syntax

A note carries metadata in two places. Every key maps to a list of string values.

## Frontmatter

A YAML block that must open the note:

` + "```" + `markdown
---
title: Weekly standup
tags: [ meeting-notes, project-x ]
reviewed:
---
` + "```" + `

- Scalars become one-value lists, sequences keep their order, an empty key has no values.
- Nested mappings are kept as flow-style text.
- notemeta rewrites the block as ` + "`" + `key: value` + "`" + ` or ` + "`" + `key: [ a, b ]` + "`" + `.

## Inline fields

Dataview-style ` + "`" + `key:: value` + "`" + ` annotations anywhere in the body:

` + "```" + `markdown
status:: open
- due:: 2025-01-20
> [!info]- metadata
> project:: notemeta
` + "```" + `

- A key starts with a letter and may contain letters, digits, ` + "`" + `_` + "`" + `, ` + "`" + `-` + "`" + ` and spaces.
- Everything after ` + "`" + `::` + "`" + ` up to the end of the line is the value list.
- Lines holding an enclosed form such as ` + "`" + `[key:: value]` + "`" + ` or ` + "`" + `(key:: value)` + "`" + ` are never read or rewritten.
- A key repeated on several lines collects all of its values.

## Separators

Keys configured with separators (for example ` + "`" + `tags` + "`" + ` on ` + "`" + `,` + "`" + `) are split into several
values: ` + "`" + `tags:: a, b` + "`" + ` holds ` + "`" + `a` + "`" + ` and ` + "`" + `b` + "`" + `.

## Edits

edit_metadata applies a list of edits in order; nothing is written if one fails.

| op | fields | effect |
|----|--------|--------|
| add | key, values, kind, overwrite, allow_duplicates | append values (create the key) |
| remove | key, values, kind | remove values, or the key when values is empty |
| move | keys, kind (source), to | move keys between frontmatter and inline |
| move_to_defaults | | move configured keys to their default kind |
| remove_empty | kind | drop keys without values |
| dedupe | keys, kind | drop repeated values |
| order | keys, kind, order_keys, order_values | sort keys and/or values (asc, desc, none) |

kind is one of frontmatter, inline, notemeta (both) or default (per-key configuration).
add defaults to default, every other op to notemeta.
`
