package vcf

import (
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
)

// ParseProperty tokenizes one trimmed logical line into a Property.
// Parameter tokens are split on ';' with empty tokens skipped, while value
// fields keep them, so "a;;c" yields three values. Failures are InvalidProperty.
func ParseProperty(line string) (*Property, error) {
	return parseProperty(line, 0)
}

func parseProperty(line string, lineNum int) (*Property, error) {
	preamble, valueRegion, ok := strings.Cut(line, ":")
	if !ok {
		return nil, newError(InvalidProperty, lineNum, config.ErrMissingColon)
	}

	// Group is everything before the first '.', even one that sits inside a
	// parameter value.
	group := ""
	if g, rest, found := strings.Cut(preamble, "."); found {
		group, preamble = g, rest
	}

	// Empty tokens between ';' carry nothing and are dropped.
	var tokens []string
	for tok := range strings.SplitSeq(preamble, ";") {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return nil, newError(InvalidProperty, lineNum, config.ErrEmptyName)
	}

	prop := NewProperty(group, tokens[0])
	for _, tok := range tokens[1:] {
		name, value, found := strings.Cut(tok, "=")
		if !found || name == "" || value == "" {
			return nil, newError(InvalidProperty, lineNum, config.ErrBadParameter)
		}
		prop.Parameters.InsertBack(Parameter{Name: name, Value: value})
	}

	for v := range strings.SplitSeq(valueRegion, ";") {
		prop.Values.InsertBack(v)
	}
	return prop, nil
}
