package vcf

import (
	"bytes"

	"github.com/tartampluch/go-contacts/internal/config"
)

// Unfold checks line endings and joins folded continuation lines.
// Every LF must be preceded by CR, otherwise the document is InvalidCard.
// A CRLF followed by one space or tab is removed together with that whitespace
// character; no separator is inserted at the fold point.
func Unfold(raw []byte) ([]byte, error) {
	if line := bareLineFeed(raw); line > 0 {
		return nil, newError(InvalidCard, line, config.ErrBareLineFeed)
	}
	return unfold(raw), nil
}

// bareLineFeed returns the 1-based physical line of the first LF not preceded
// by CR, or 0 when there is none.
func bareLineFeed(raw []byte) int {
	line := 1
	for i, b := range raw {
		if b != '\n' {
			continue
		}
		if i == 0 || raw[i-1] != '\r' {
			return line
		}
		line++
	}
	return 0
}

func unfold(raw []byte) []byte {
	// Fast path: most cards are not folded.
	if !bytes.Contains(raw, []byte("\r\n ")) && !bytes.Contains(raw, []byte("\r\n\t")) {
		return bytes.Clone(raw)
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); {
		// Only one whitespace character belongs to the fold.
		if raw[i] == '\r' && i+2 < len(raw) && raw[i+1] == '\n' && isFoldSpace(raw[i+2]) {
			i += 3
			continue
		}
		out = append(out, raw[i])
		i++
	}
	return out
}

func isFoldSpace(b byte) bool { return b == ' ' || b == '\t' }
