package mcpserver

// NoteFormatContract describes the canonical Markdown note format that
// LLM consumers should follow when creating or updating notes.
const NoteFormatContract = `# Synapse Note Format Contract

Every Markdown note stored in Synapse SHOULD follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # RECOMMENDED – used in search, lists, backlinks
tags:                               # OPTIONAL – YAML list; merged with inline #tags
  - tag-one
  - tag-two
created: 2025-01-15                 # OPTIONAL – ISO-8601 date
modified: 2025-01-15                # OPTIONAL – ISO-8601 date
---

Body text in standard Markdown.

Use [[wikilinks]] to reference other notes by title (without .md extension).
Use [[target|alias]] for display text that differs from the target, and
[[target#section]] to point at a heading.
` + "```" + `

## Rules

1. **Frontmatter must open the file.** The ` + "`" + `---` + "`" + ` fence must be the very
   first line; otherwise the block is treated as body text.
2. **Titles resolve links.** A wikilink target is a note title, not a file
   path. When no frontmatter title is set, the first heading names the note,
   then the filename stem.
3. **Tags** may live in frontmatter or inline as ` + "`" + `#tag` + "`" + ` at a word boundary.
   Inline tags inside code fences or inline code are ignored.
4. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes. Files and
   folders starting with a dot are invisible to the index.
5. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
---
title: Weekly standup 2025-01-20
tags:
  - meeting-notes
created: 2025-01-20
---

# Weekly standup 2025-01-20

Attendees: Alice, Bob. #project-x

## Action items

- [[Alice]] to review the [[Design Doc]]
- Bob to update [[Roadmap|the roadmap]]
` + "```" + `
`
