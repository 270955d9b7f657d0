package markdown

import "strings"

// Block is a generated region of a hand-edited document, delimited by HTML comments
// so it stays invisible when the document is rendered.
type Block struct {
	Start string
	End   string
}

// Replace swaps the block's current content for generated, appending the block when absent.
// Text outside the markers is preserved byte for byte.
func (b Block) Replace(doc, generated string) string {
	region := b.Start + "\n" + generated + "\n" + b.End

	start := strings.Index(doc, b.Start)
	end := strings.Index(doc, b.End)
	if start >= 0 && end > start {
		return doc[:start] + region + doc[end+len(b.End):]
	}

	switch {
	case strings.TrimSpace(doc) == "":
		return region + "\n"
	case strings.HasSuffix(doc, "\n"):
		return doc + "\n" + region + "\n"
	default:
		return doc + "\n\n" + region + "\n"
	}
}
