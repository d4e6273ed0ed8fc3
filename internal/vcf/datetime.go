package vcf

import (
	"fmt"
	"strings"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/ordered"
)

// DateTime is the value of a BDAY or ANNIVERSARY property: either TextDate or
// StructuredDate.
type DateTime interface {
	fmt.Stringer
	dateTime()
}

// TextDate is a free-form date kept verbatim (BDAY;VALUE=text:circa 1800).
type TextDate struct {
	Text string
}

// StructuredDate is a date, optionally followed by a time after the 'T' separator.
// UTC is never set by the parser: zone suffixes are not interpreted.
type StructuredDate struct {
	Date string
	Time string
	UTC  bool
}

func (TextDate) dateTime()       {}
func (StructuredDate) dateTime() {}

func (t TextDate) String() string {
	return fmt.Sprintf(config.DisplayDateTimeText, t.Text)
}

func (s StructuredDate) String() string {
	utc := config.DisplayNo
	if s.UTC {
		utc = config.DisplayYes
	}
	return fmt.Sprintf(config.DisplayDateTimeStruct, s.Date, s.Time, utc)
}

// Value renders the date the way it appears after the ':' of a content line.
func (s StructuredDate) Value() string {
	if s.Time == "" {
		return s.Date
	}
	return s.Date + "T" + s.Time
}

// NormalizeDateTime turns the raw value of a date property into a DateTime.
// A VALUE=text parameter (both sides case-insensitive) selects TextDate; otherwise
// the raw token is split at its first 'T' into date and time.
func NormalizeDateTime(raw string, params *ordered.List[Parameter]) DateTime {
	if hasTextValue(params) {
		return TextDate{Text: raw}
	}
	date, tm, _ := strings.Cut(raw, "T")
	return StructuredDate{Date: date, Time: tm}
}

func hasTextValue(params *ordered.List[Parameter]) bool {
	for p := range params.Values() {
		if strings.EqualFold(p.Name, config.ParamValue) && strings.EqualFold(p.Value, config.ParamValueText) {
			return true
		}
	}
	return false
}
