package engine

import "time"

// Upcoming is one yearly occurrence source (a birthday or an anniversary)
// with its next date, used for the contact listing.
type Upcoming struct {
	// UID is a deterministic hash, stable across refreshes.
	UID string `json:"uid"`

	// Kind is config.EventKindBirthday or config.EventKindAnniversary.
	Kind string `json:"kind"`

	Name string `json:"name"`
	File string `json:"file"`

	// Date is the original date. Year-less dates use config.DefaultLeapYear.
	Date      time.Time `json:"date"`
	YearKnown bool      `json:"year_known"`

	// NextOccurrence is the first matching date on or after today.
	NextOccurrence time.Time `json:"next_occurrence"`

	// AgeNext is the age (or number of years) reached at NextOccurrence.
	// Only valid if YearKnown is true.
	AgeNext int `json:"age_next,omitempty"`
}
