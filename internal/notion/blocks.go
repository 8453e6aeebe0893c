package notion

import (
	"fmt"
	"regexp"
	"strings"
)

// maxChildren is Notion's limit on children per create/append request.
const maxChildren = 100

// markdownToBlocks converts the simple markdown the pipeline emits
// (headings, bullets, bold, paragraphs) into Notion block objects.
// Content beyond the API's children limit is truncated with a marker.
func markdownToBlocks(markdown string) []map[string]any {
	var blocks []map[string]any

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "### "):
			blocks = append(blocks, map[string]any{
				"type": "heading_3",
				"heading_3": map[string]any{
					"rich_text": richText(strings.TrimPrefix(trimmed, "### ")),
				},
			})
		case strings.HasPrefix(trimmed, "## "):
			blocks = append(blocks, heading2Block(strings.TrimPrefix(trimmed, "## ")))
		case strings.HasPrefix(trimmed, "- "):
			blocks = append(blocks, map[string]any{
				"type": "bulleted_list_item",
				"bulleted_list_item": map[string]any{
					"rich_text": parseRichText(strings.TrimPrefix(trimmed, "- ")),
				},
			})
		default:
			blocks = append(blocks, map[string]any{
				"type": "paragraph",
				"paragraph": map[string]any{
					"rich_text": parseRichText(trimmed),
				},
			})
		}
	}

	if len(blocks) > maxChildren {
		truncated := blocks[:maxChildren-1]
		truncated = append(truncated, paragraphBlock(fmt.Sprintf(
			"Content truncated (%d blocks over the limit). See the full output in the pipeline output directory.",
			len(blocks)-(maxChildren-1))))
		return truncated
	}
	return blocks
}

func heading2Block(text string) map[string]any {
	return map[string]any{
		"type": "heading_2",
		"heading_2": map[string]any{
			"rich_text": richText(text),
		},
	}
}

func paragraphBlock(text string) map[string]any {
	return map[string]any{
		"type": "paragraph",
		"paragraph": map[string]any{
			"rich_text": richText(text),
		},
	}
}

func titleProperty(text string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]any{"content": text}},
		},
	}
}

func richText(text string) []map[string]any {
	return []map[string]any{
		{"type": "text", "text": map[string]any{"content": text}},
	}
}

var boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)

// parseRichText splits markdown bold spans into annotated rich text parts.
func parseRichText(text string) []map[string]any {
	var parts []map[string]any
	last := 0

	for _, m := range boldRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			parts = append(parts, map[string]any{
				"type": "text",
				"text": map[string]any{"content": text[last:m[0]]},
			})
		}
		parts = append(parts, map[string]any{
			"type":        "text",
			"text":        map[string]any{"content": text[m[2]:m[3]]},
			"annotations": map[string]any{"bold": true},
		})
		last = m[1]
	}
	if last < len(text) {
		parts = append(parts, map[string]any{
			"type": "text",
			"text": map[string]any{"content": text[last:]},
		})
	}

	if len(parts) == 0 {
		return richText(text)
	}
	return parts
}
