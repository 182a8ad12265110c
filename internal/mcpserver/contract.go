package mcpserver

// ContentFormatContract describes the canonical Markdown content format
// that LLM consumers should follow when creating or updating objects.
const ContentFormatContract = `# Ansuz Content Format Contract

Every object stored in Ansuz is Markdown that maps to a sequence of typed
blocks. Follow this structure when creating or updating content.

## Blocks

` + "```" + `markdown
# Heading (levels 1-6)

Plain paragraph text. Consecutive lines merge into one text block;
a blank line starts a new block.

- unordered list item
1. ordered list item

> quote lines
> merge into one quote block

---

![[object-id]]
` + "```" + `

Code fences (three backticks, optional language tag) are kept verbatim as
code blocks.

## Rules

1. **Wikilinks** use double brackets: ` + "`" + `[[object-id]]` + "`" + `. The target is the
   object id. Use ` + "`" + `[[object-id|display text]]` + "`" + ` when the shown text should
   differ from the target.
2. **Block embeds** place another object inline: ` + "`" + `![[object-id]]` + "`" + ` alone on
   its own line.
3. **Inline emphasis** is ` + "`" + `**bold**` + "`" + ` and ` + "`" + `*italic*` + "`" + `, no nesting. Unmatched
   markers are kept as literal text.
4. The first heading becomes the object title; without one, the first text
   line is used.
5. **Encoding** is UTF-8.
6. **No HTML**; use Markdown equivalents.

## Example

` + "```" + `markdown
# Reading list

Currently reading **Snow Crash**.

- finished: [[neuromancer|Neuromancer]]
- next up: [[diamond-age]]

![[quotes-snow-crash]]
` + "```" + `
`
