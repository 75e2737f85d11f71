package pdf

import "strings"

type blockKind int

const (
	blockHeading blockKind = iota
	blockParagraph
)

type block struct {
	kind  blockKind
	level int
	text  string
}

// parseBlocks splits Markdown-ish text into heading and paragraph blocks.
// Tables and list items are demoted to one paragraph block per row so the
// layout pass only ever deals with two block shapes.
func parseBlocks(markdown string) []block {
	var blocks []block
	var para []string

	flush := func() {
		if len(para) == 0 {
			return
		}
		blocks = append(blocks, block{kind: blockParagraph, text: strings.Join(para, " ")})
		para = nil
	}

	for _, raw := range strings.Split(markdown, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "#"):
			flush()
			level := 0
			for level < len(line) && line[level] == '#' {
				level++
			}
			text := strings.TrimSpace(line[level:])
			blocks = append(blocks, block{kind: blockHeading, level: level, text: stripInline(text)})
		case strings.HasPrefix(line, "|"):
			flush()
			if isTableRule(line) {
				continue
			}
			blocks = append(blocks, block{kind: blockParagraph, text: stripInline(tableRowText(line))})
		case strings.HasPrefix(line, "- ") || isOrderedItem(line):
			flush()
			blocks = append(blocks, block{kind: blockParagraph, text: stripInline(line)})
		default:
			para = append(para, stripInline(line))
		}
	}
	flush()
	return blocks
}

// isTableRule matches Markdown table separators like |---|---|.
func isTableRule(line string) bool {
	for _, r := range line {
		switch r {
		case '|', '-', ':', ' ':
		default:
			return false
		}
	}
	return true
}

func tableRowText(line string) string {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return strings.Join(cells, "   ")
}

func isOrderedItem(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	return i > 0 && i+1 < len(line) && line[i] == '.' && line[i+1] == ' '
}

// stripInline removes the inline Markdown the PDF renderer has no use for:
// emphasis markers and link syntax.
func stripInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	// [label](url) -> label (url)
	for {
		open := strings.Index(s, "[")
		mid := strings.Index(s, "](")
		if open < 0 || mid < open {
			break
		}
		end := strings.Index(s[mid:], ")")
		if end < 0 {
			break
		}
		end += mid
		label := s[open+1 : mid]
		url := s[mid+2 : end]
		s = s[:open] + label + " (" + url + ")" + s[end+1:]
	}
	return s
}
