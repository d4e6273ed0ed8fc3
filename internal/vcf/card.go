// Package vcf reads, validates and writes vCard 4.0 contact cards.
//
// A card travels through three independent steps:
//
//	Parse     raw bytes -> *Card   (unfolding, tokenizing, assembling)
//	Validate  *Card -> error       (whitelist, cardinality, uniqueness)
//	Write     *Card -> bytes       (canonical section order, CRLF lines)
//
// Every step fails with an *Error whose Kind can be tested with errors.Is.
// A failed Parse never returns a partially filled Card.
package vcf

import (
	"fmt"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/ordered"
)

// Parameter is a name=value modifier attached to a property.
type Parameter struct {
	Name  string
	Value string
}

func (p Parameter) String() string {
	return fmt.Sprintf("Name: %s, Value: %s", p.Name, p.Value)
}

// Property is one content line: [group "."] name *(";" param) ":" value *(";" value).
// Parameters and Values are never nil for properties built by this package.
type Property struct {
	Group      string
	Name       string
	Parameters *ordered.List[Parameter]
	Values     *ordered.List[string]
}

// NewProperty returns a property with empty parameter and value lists.
func NewProperty(group, name string, values ...string) *Property {
	return &Property{
		Group:      group,
		Name:       name,
		Parameters: ordered.New[Parameter](),
		Values:     ordered.New(values...),
	}
}

// AddParameter appends a parameter and returns the property for chaining.
func (p *Property) AddParameter(name, value string) *Property {
	p.Parameters.InsertBack(Parameter{Name: name, Value: value})
	return p
}

// FirstValue returns the first value token, or "" when there is none.
func (p *Property) FirstValue() string {
	v, _ := p.Values.Front()
	return v
}

// Is reports whether the property name matches name, ignoring case.
func (p *Property) Is(name string) bool {
	return strings.EqualFold(p.Name, name)
}

func (p *Property) String() string {
	return fmt.Sprintf("\n Group: %s, Name: %s, Parameters: %s, Values: %s",
		p.Group, p.Name, p.Parameters.Join(", "), p.Values.Join(", "))
}

// Card is a parsed contact. FN is always set on a card returned by Parse or
// NewMinimalCard. Birthday and Anniversary are nil when absent.
type Card struct {
	FN          *Property
	Optional    *ordered.List[*Property]
	Birthday    DateTime
	Anniversary DateTime
}

// DisplayName returns the first FN value, or "" when the card has no FN.
func (c *Card) DisplayName() string {
	if c == nil || c.FN == nil {
		return ""
	}
	return c.FN.FirstValue()
}

// NumOptional returns the number of optional properties.
func (c *Card) NumOptional() int {
	if c == nil {
		return 0
	}
	return c.Optional.Len()
}

// BirthdayString describes the birthday, or "None".
func (c *Card) BirthdayString() string {
	if c == nil || c.Birthday == nil {
		return config.DisplayNone
	}
	return c.Birthday.String()
}

// AnniversaryString describes the anniversary, or "None".
func (c *Card) AnniversaryString() string {
	if c == nil || c.Anniversary == nil {
		return config.DisplayNone
	}
	return c.Anniversary.String()
}

// Lookup returns the first optional property named name (case-insensitive).
func (c *Card) Lookup(name string) (*Property, bool) {
	for p := range c.Optional.Values() {
		if p.Is(name) {
			return p, true
		}
	}
	return nil, false
}

func (c *Card) String() string {
	if c == nil {
		return "null"
	}
	fn := ""
	if c.FN != nil {
		fn = c.FN.String()
	}
	return fmt.Sprintf("FN: %s\nOptional Properties:\n%s\nBirthday: %s\nAnniversary: %s",
		fn, c.Optional.String(), c.BirthdayString(), c.AnniversaryString())
}

// NewMinimalCard builds a card holding only an FN property with the given value.
// An empty name falls back to config.DefaultFormattedName.
func NewMinimalCard(formattedName string) *Card {
	if formattedName == "" {
		formattedName = config.DefaultFormattedName
	}
	return &Card{
		FN:       NewProperty("", config.VCardFN, formattedName),
		Optional: ordered.New[*Property](),
	}
}

// SetFormattedName replaces every FN value with formattedName. A card without
// an FN property gets a fresh one. An empty name falls back to config.DefaultFormattedName.
func (c *Card) SetFormattedName(formattedName string) error {
	if c == nil {
		return newError(InvalidFile, 0, config.ErrNilCard)
	}
	if formattedName == "" {
		formattedName = config.DefaultFormattedName
	}
	if c.FN == nil {
		c.FN = NewProperty("", config.VCardFN)
	}
	if c.FN.Values == nil {
		c.FN.Values = ordered.New[string]()
	}
	if c.FN.Parameters == nil {
		c.FN.Parameters = ordered.New[Parameter]()
	}
	c.FN.Values.Clear()
	c.FN.Values.InsertBack(formattedName)
	return nil
}
