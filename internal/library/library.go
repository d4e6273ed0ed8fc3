// Package library loads a directory of card files and summarizes every card
// that both parses and validates.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/vcf"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Date is the storable form of a card date. Text dates keep their free-form
// value and never take part in calendar computations.
type Date struct {
	Value string `json:"value"`
	Text  bool   `json:"text,omitempty"`
}

// IsZero reports whether the card had no such date.
func (d Date) IsZero() bool { return d.Value == "" && !d.Text }

// Entry summarizes one valid card file.
type Entry struct {
	File        string    `json:"file"`
	Name        string    `json:"name"`
	Birthday    Date      `json:"birthday"`
	Anniversary Date      `json:"anniversary"`
	NumProps    int       `json:"num_props"`
	Size        int64     `json:"size"`
	Modified    time.Time `json:"modified"`
}

// Skipped records a file that could not be loaded and why.
type Skipped struct {
	File string
	Kind vcf.Kind
	Err  error
}

// Result is the outcome of a directory scan.
type Result struct {
	Entries []Entry
	Skipped []Skipped
}

// NewEntry builds the summary of card c stored at file.
func NewEntry(file string, c *vcf.Card, info os.FileInfo) Entry {
	e := Entry{
		File:        file,
		Name:        c.DisplayName(),
		Birthday:    dateOf(c.Birthday),
		Anniversary: dateOf(c.Anniversary),
		NumProps:    c.NumOptional(),
	}
	if info != nil {
		e.Size = info.Size()
		e.Modified = info.ModTime()
	}
	return e
}

func dateOf(dt vcf.DateTime) Date {
	switch d := dt.(type) {
	case vcf.TextDate:
		return Date{Value: d.Text, Text: true}
	case vcf.StructuredDate:
		return Date{Value: d.Value()}
	default:
		return Date{}
	}
}

// Load reads, parses and validates the card at path.
func Load(path string) (Entry, *vcf.Card, error) {
	card, err := vcf.ReadFile(path)
	if err != nil {
		return Entry{}, nil, err
	}
	if err := vcf.Validate(card); err != nil {
		return Entry{}, nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("%s: %w", config.ErrFileRead, err)
	}
	return NewEntry(path, card, info), card, nil
}

// Scan loads every .vcf/.vcard file directly inside dir. Files with another
// extension are ignored; cards that fail to parse or validate are reported in
// Result.Skipped. Only a failure to list dir itself is returned as an error.
func Scan(ctx context.Context, dir string) (Result, error) {
	if dir == "" {
		return Result{}, errors.New(config.ErrLocalPathEmpty)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", config.ErrLibraryScan, err)
	}

	log := slog.With(config.LogKeyComponent, config.CompLibrary, config.LogKeyDir, dir)
	var res Result
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if de.IsDir() {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if !vcf.HasCardExtension(path) {
			log.Debug(config.MsgSkippedFile, config.LogKeyFile, de.Name())
			continue
		}

		entry, _, err := Load(path)
		if err != nil {
			log.Warn(config.MsgSkippedCard,
				config.LogKeyFile, de.Name(),
				config.LogKeyKind, vcf.KindOf(err).String(),
				config.LogKeyError, err,
			)
			res.Skipped = append(res.Skipped, Skipped{File: path, Kind: vcf.KindOf(err), Err: err})
			continue
		}
		res.Entries = append(res.Entries, entry)
	}

	log.Info(config.MsgSyncFinished,
		config.LogKeyLoaded, len(res.Entries),
		config.LogKeySkipped, len(res.Skipped),
	)
	return res, nil
}

// SortByName orders entries by display name using the collation rules of lang,
// then by file name.
func SortByName(entries []Entry, lang string) {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	coll := collate.New(tag, collate.IgnoreCase)
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := coll.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return coll.CompareString(a.File, b.File)
	})
}

// SortByBirthday orders a month listing the way the contact list reports
// birthdays: year-less dates first, then the most recent birth date first.
// Ties, and entries without a structured birthday, keep name order.
func SortByBirthday(entries []Entry, lang string) {
	SortByName(entries, lang)
	slices.SortStableFunc(entries, func(a, b Entry) int {
		ta, yearA := birthDate(a)
		tb, yearB := birthDate(b)
		switch {
		case yearA != yearB && !yearA:
			return -1
		case yearA != yearB:
			return 1
		default:
			return tb.Compare(ta)
		}
	})
}

// birthDate returns the full birth date when the birthday carries a year.
func birthDate(e Entry) (time.Time, bool) {
	if e.Birthday.Text || e.Birthday.Value == "" {
		return time.Time{}, false
	}
	t, yearKnown, err := ParseDate(e.Birthday.Value)
	if err != nil || !yearKnown {
		return time.Time{}, false
	}
	return t, true
}
