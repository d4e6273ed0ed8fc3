package vcf

import (
	"slices"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
)

// Validate checks the semantic rules that parsing does not enforce:
// allowed property names, value and parameter shape, N cardinality,
// name uniqueness among optional properties and date placement.
// It returns the first violation found.
func Validate(c *Card) error {
	if c == nil {
		return newError(InvalidCard, 0, config.ErrNilCard)
	}
	if c.FN == nil {
		return newError(InvalidCard, 0, config.ErrNoFN)
	}
	if err := checkShape(c.FN); err != nil {
		return err
	}
	if c.Optional == nil {
		return newError(InvalidCard, 0, config.ErrNoOptional)
	}

	// Shape first, then the per-name rules, so a bad N shape reports the shape.
	var countN, countVersion int
	for p := range c.Optional.Values() {
		if p == nil {
			return newError(InvalidProperty, 0, config.ErrEmptyName)
		}
		if err := checkShape(p); err != nil {
			return err
		}
		switch {
		case p.Is(config.VCardVersion):
			countVersion++
		case p.Is(config.VCardN):
			countN++
			if p.Values.Len() != config.NComponents {
				return propertyError(p, config.ErrNComponents)
			}
		// Dates only live in the dedicated fields.
		case p.Is(config.VCardBDAY), p.Is(config.VCardAnniversary):
			return &Error{Kind: InvalidDateTime, Reason: config.ErrDateAsProp + ": " + p.Name}
		}
	}
	if countVersion > 0 {
		return newError(InvalidCard, 0, config.ErrVersionAsProp)
	}
	if countN > 1 {
		return newError(InvalidProperty, 0, config.ErrNCardinality)
	}

	// Uniqueness is case-insensitive: "tel" and "TEL" collide.
	seen := make(map[string]struct{}, c.Optional.Len())
	for p := range c.Optional.Values() {
		key := strings.ToUpper(p.Name)
		if _, dup := seen[key]; dup {
			return propertyError(p, config.ErrDuplicateName)
		}
		seen[key] = struct{}{}
	}

	if err := checkDate(c.Birthday); err != nil {
		return err
	}
	return checkDate(c.Anniversary)
}

// IsAllowedName reports whether name is in the property whitelist, ignoring case.
func IsAllowedName(name string) bool {
	return slices.ContainsFunc(config.AllowedPropertyNames, func(allowed string) bool {
		return strings.EqualFold(allowed, name)
	})
}

// checkShape applies the rules shared by FN and every optional property.
func checkShape(p *Property) error {
	if p.Name == "" {
		return newError(InvalidProperty, 0, config.ErrEmptyName)
	}
	if !IsAllowedName(p.Name) {
		return propertyError(p, config.ErrNameNotAllowed)
	}
	if p.Values == nil || p.Values.Len() == 0 {
		return propertyError(p, config.ErrNoValues)
	}
	if p.Parameters == nil {
		return propertyError(p, config.ErrBadParameter)
	}
	for param := range p.Parameters.Values() {
		if param.Name == "" || param.Value == "" {
			return propertyError(p, config.ErrBadParameter)
		}
	}
	return nil
}

func checkDate(dt DateTime) error {
	switch d := dt.(type) {
	case nil, TextDate:
		// A TextDate has no structured fields to get wrong.
		return nil
	case StructuredDate:
		if d.Date == "" {
			return newError(InvalidDateTime, 0, config.ErrEmptyDate)
		}
		return nil
	default:
		return newError(InvalidDateTime, 0, config.ErrUnknownDateTime)
	}
}

func propertyError(p *Property, reason string) *Error {
	return &Error{Kind: InvalidProperty, Reason: reason + ": " + p.Name}
}
