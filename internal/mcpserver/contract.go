package mcpserver

// TagFormatContract describes how notes carry tags, for LLM consumers that
// read or edit notes in the vault.
const TagFormatContract = `# Note Tag Contract

## Primary tag

The first non-blank line of the body (after any frontmatter) is the primary
tag marker:

` + "```" + `markdown
---
aliases:
  - 2025-01-20 dev/old-name
---
{ #dev/project }

# Title
` + "```" + `

- The marker is ` + "`" + `{ #segment/segment }` + "`" + `, followed by a blank line.
- The primary tag mirrors the note's directory below the tag root: a note at
  ` + "`" + `Notas/dev/project/x.md` + "`" + ` has primary tag ` + "`" + `dev/project` + "`" + `.
- Do not edit the marker by hand; use the ` + "`" + `retag_note` + "`" + ` tool, which also records the
  previous tag in ` + "`" + `aliases` + "`" + `.

## Secondary tags

- Frontmatter ` + "`" + `tags` + "`" + ` (or ` + "`" + `tag` + "`" + `, ` + "`" + `Tags` + "`" + `, ` + "`" + `Tag` + "`" + `; the first present key wins) is a
  list where each element is one tag: ` + "`" + `tags: [home/plants, ideas]` + "`" + `.
- Inline ` + "`" + `#segment/segment` + "`" + ` tokens in the body count too, except inside fenced
  code blocks.
`
