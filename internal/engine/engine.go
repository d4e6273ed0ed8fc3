package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/library"
)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	CardsDir        string // Directory holding the .vcf/.vcard files
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D"), empty for no alarm
}

// Snapshot is the outcome of one synchronization.
type Snapshot struct {
	ICS      []byte
	Entries  []library.Entry
	Upcoming []Upcoming
	Today    int
	Skipped  int
}

// SummaryFunc renders the SUMMARY of an event. kind is config.EventKindBirthday
// or config.EventKindAnniversary; age is only meaningful when yearKnown is true.
type SummaryFunc func(kind, name string, age int, yearKnown bool) string

// Generator turns a directory of cards into an iCalendar feed.
type Generator struct {
	Clock   Clock              // Interface for time mocking.
	Fetcher AddressBookFetcher // Interface for network abstraction.

	// FormatSummary allows the CLI to inject localized strings into the logic layer.
	FormatSummary SummaryFunc
}

// RunSync scans cfg.CardsDir and renders every birthday and anniversary found.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (*Snapshot, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyDir, cfg.CardsDir,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	res, err := library.Scan(ctx, cfg.CardsDir)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	snap, err := g.Generate(ctx, res.Entries, cfg.ReminderTrigger)
	if err != nil {
		return nil, err
	}
	snap.Skipped = len(res.Skipped)

	log.Debug(config.MsgSyncFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	return snap, nil
}

// Generate builds the calendar for entries. Text dates and dates that are not
// calendar dates are ignored.
func (g *Generator) Generate(ctx context.Context, entries []library.Entry, reminderTrigger string) (*Snapshot, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Local time decides "today"; UTC only for stamping.
	now := g.now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	snap := &Snapshot{Entries: entries}
	events := 0

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := e.Name
		if name == "" {
			name = config.FallbackName
		}

		for _, src := range []struct {
			kind string
			date library.Date
		}{
			{config.EventKindBirthday, e.Birthday},
			{config.EventKindAnniversary, e.Anniversary},
		} {
			if src.date.Text || src.date.Value == "" {
				continue
			}
			date, yearKnown, err := library.ParseDate(src.date.Value)
			if err != nil {
				slog.Debug(config.MsgSkippedDate,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyFile, e.File,
					config.LogKeyValue, src.date.Value,
				)
				continue
			}

			input := fmt.Sprintf(config.FormatHashInput, src.kind, name, date.Format(time.RFC3339), config.UIDSalt)
			hash := sha256.Sum256([]byte(input))
			uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])

			next, ageNext := calculateNextOccurrence(now, date, yearKnown)
			snap.Upcoming = append(snap.Upcoming, Upcoming{
				UID:            uidBase,
				Kind:           src.kind,
				Name:           name,
				File:           e.File,
				Date:           date,
				YearKnown:      yearKnown,
				NextOccurrence: next,
				AgeNext:        ageNext,
			})

			evs, isToday := g.createEvents(src.kind, name, date, yearKnown, reminderTrigger, now, uidBase)
			if isToday {
				snap.Today++
			}
			for _, ev := range evs {
				ev.Props.Set(dtStampProp)
				cal.Children = append(cal.Children, ev.Component)
				events++
			}
		}
	}

	slices.SortStableFunc(snap.Upcoming, func(a, b Upcoming) int {
		return a.NextOccurrence.Compare(b.NextOccurrence)
	})

	if events == 0 {
		snap.ICS = []byte(config.StubVCalendar)
		g.logSuccess(len(entries), 0, snap.Today)
		return snap, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	snap.ICS = buf.Bytes()
	g.logSuccess(len(entries), events, snap.Today)
	return snap, nil
}

func (g *Generator) now() time.Time {
	if g.Clock == nil {
		return RealClock{}.Now()
	}
	return g.Clock.Now()
}

func (g *Generator) logSuccess(cards, events, today int) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, cards),
			slog.Int(config.LogKeyEvents, events),
			slog.Int(config.LogKeyToday, today),
		),
	)
}

// calculateNextOccurrence returns the next date on or after today matching
// date's month and day, and the age or number of years reached on it.
func calculateNextOccurrence(now, date time.Time, yearKnown bool) (time.Time, int) {
	loc := now.Location()
	// time.Date turns Feb 29 into Mar 1 outside leap years.
	candidate := time.Date(now.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if candidate.Before(todayStart) {
		candidate = time.Date(now.Year()+1, date.Month(), date.Day(), 0, 0, 0, 0, loc)
	}

	age := 0
	if yearKnown {
		age = candidate.Year() - date.Year()
	}
	return candidate, age
}

// createEvents generates all-day events for the previous, current and next year,
// never before the original year when it is known.
func (g *Generator) createEvents(kind, name string, date time.Time, yearKnown bool, reminderTrigger string, now time.Time, uidBase string) ([]*ical.Event, bool) {
	currentYear := now.Year()
	loc := now.Location()
	todayYear, todayMonth, todayDay := now.Date()

	var events []*ical.Event
	isToday := false

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if yearKnown && y < date.Year() {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))

		age := 0
		if yearKnown {
			age = y - date.Year()
		}
		summary := g.summary(kind, name, age, yearKnown)
		event.Props.SetText(config.PropSummary, summary)

		eventDate := time.Date(y, date.Month(), date.Day(), 0, 0, 0, 0, loc)
		if eventDate.Year() == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		dtStart := ical.NewProp(config.PropDTStart)
		dtStart.SetDate(eventDate)
		event.Props.Set(dtStart)

		if reminderTrigger != "" {
			addAlarm(event, reminderTrigger, summary)
		}
		events = append(events, event)
	}
	return events, isToday
}

func (g *Generator) summary(kind, name string, age int, yearKnown bool) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(kind, name, age, yearKnown)
	}
	return DefaultSummary(kind, name, age, yearKnown)
}

// DefaultSummary is the untranslated SUMMARY text. An age is shown only when
// the year is known and positive.
func DefaultSummary(kind, name string, age int, yearKnown bool) string {
	withAge := yearKnown && age > 0
	switch {
	case kind == config.EventKindAnniversary && withAge:
		return fmt.Sprintf(config.FallbackSummaryAnnivYears, name, age)
	case kind == config.EventKindAnniversary:
		return fmt.Sprintf(config.FallbackSummaryAnniversary, name)
	case withAge:
		return fmt.Sprintf(config.FallbackSummaryBirthdayAge, name, age)
	default:
		return fmt.Sprintf(config.FallbackSummaryBirthday, name)
	}
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Raw value: SetText would add VALUE=TEXT.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
