package vcf

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/ordered"
)

// assembler states, in the order they are entered.
type state int

const (
	awaitingBegin state = iota
	awaitingVersion
	collectingProperties
	done
)

// Parse builds a Card from a complete single-card document.
// It fails with the first error found; no partial card is ever returned.
func Parse(data []byte) (*Card, error) {
	unfolded, err := Unfold(data)
	if err != nil {
		return nil, err
	}
	a := &assembler{card: &Card{Optional: ordered.New[*Property]()}}
	if err := a.run(unfolded); err != nil {
		return nil, err
	}
	slog.Debug(config.MsgCardAssembled,
		config.LogKeyComponent, config.CompParser,
		config.LogKeyName, a.card.DisplayName(),
		config.LogKeyOptional, a.card.Optional.Len(),
	)
	return a.card, nil
}

// ParseReader reads r to the end and parses it.
func ParseReader(r io.Reader) (*Card, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapError(InvalidFile, config.ErrFileRead, err)
	}
	return Parse(data)
}

// ReadFile parses the card stored at path. The file name must end in .vcf or
// .vcard (any case) and the file must be readable, otherwise InvalidFile.
func ReadFile(path string) (*Card, error) {
	if !HasCardExtension(path) {
		return nil, &Error{Kind: InvalidFile, Reason: fmt.Sprintf("%s: %s", config.ErrFileName, path)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(InvalidFile, config.ErrFileRead, err)
	}
	return Parse(data)
}

// HasCardExtension reports whether path ends in .vcf or .vcard, ignoring case.
func HasCardExtension(path string) bool {
	ext := filepath.Ext(path)
	return strings.EqualFold(ext, config.ExtVCF) || strings.EqualFold(ext, config.ExtVCard)
}

type assembler struct {
	card  *Card
	state state
	line  int
}

func (a *assembler) run(unfolded []byte) error {
	// CR stays on each line and goes away with the trim.
	for raw := range bytes.SplitSeq(unfolded, []byte("\n")) {
		a.line++
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		if err := a.step(line); err != nil {
			return err
		}
		// Whatever follows END:VCARD is never looked at.
		if a.state == done {
			break
		}
	}

	switch {
	case a.state < collectingProperties:
		if a.state == awaitingBegin {
			return newError(InvalidCard, 0, config.ErrMissingBegin)
		}
		return newError(InvalidCard, 0, config.ErrMissingVersion)
	case a.state != done:
		return newError(InvalidCard, 0, config.ErrMissingEnd)
	case a.card.FN == nil:
		return newError(InvalidCard, 0, config.ErrMissingFN)
	}
	return nil
}

// step advances the state machine by one non-empty trimmed line.
func (a *assembler) step(line string) error {
	// Markers are compared whole and never tokenized.
	switch {
	case line == config.MarkerBegin:
		if a.state != awaitingBegin {
			return newError(InvalidCard, a.line, config.ErrDuplicateBegin)
		}
		a.state = awaitingVersion
		return nil
	case a.state == awaitingBegin:
		return newError(InvalidCard, a.line, config.ErrMissingBegin)
	case line == config.MarkerEnd:
		if a.state == awaitingVersion {
			return newError(InvalidCard, a.line, config.ErrMissingVersion)
		}
		a.state = done
		return nil
	case a.state == awaitingVersion:
		rest, ok := strings.CutPrefix(line, config.VersionPrefix)
		if !ok || strings.TrimSpace(rest) != config.SupportedVersion {
			return newError(InvalidCard, a.line, config.ErrBadVersion)
		}
		a.state = collectingProperties
		return nil
	}

	prop, err := parseProperty(line, a.line)
	if err != nil {
		return err
	}
	slog.Debug(config.MsgPropertyRead,
		config.LogKeyComponent, config.CompParser,
		config.LogKeyLine, a.line,
		config.LogKeyProperty, prop.Name,
	)
	return a.route(prop)
}

// route stores prop in its dedicated field or in the optional collection.
// Names are matched case-sensitively here; the validator is case-insensitive.
func (a *assembler) route(prop *Property) error {
	switch prop.Name {
	case config.VCardFN:
		if a.card.FN != nil {
			return newError(InvalidProperty, a.line, config.ErrDuplicateFN)
		}
		a.card.FN = prop
	case config.VCardBDAY:
		if a.card.Birthday != nil {
			return newError(InvalidProperty, a.line, config.ErrDuplicateBDAY)
		}
		a.card.Birthday = NormalizeDateTime(prop.FirstValue(), prop.Parameters)
	case config.VCardAnniversary:
		if a.card.Anniversary != nil {
			return newError(InvalidProperty, a.line, config.ErrDuplicateAnniv)
		}
		a.card.Anniversary = NormalizeDateTime(prop.FirstValue(), prop.Parameters)
	default:
		a.card.Optional.InsertBack(prop)
	}
	return nil
}
