package engine_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
	"github.com/tartampluch/go-contacts/internal/library"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock pins "now".
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func cardsDir(t *testing.T, cards map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, lines := range cards {
		body := "BEGIN:VCARD\r\nVERSION:4.0\r\n" + strings.ReplaceAll(lines, "\n", "\r\n") + "\r\nEND:VCARD\r\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func entry(name, bday, anniv string) library.Entry {
	e := library.Entry{File: name + ".vcf", Name: name}
	if bday != "" {
		e.Birthday = library.Date{Value: bday}
	}
	if anniv != "" {
		e.Anniversary = library.Date{Value: anniv}
	}
	return e
}

func at(y int, m time.Month, d int) MockClock {
	return MockClock{CurrentTime: time.Date(y, m, d, 10, 0, 0, 0, time.UTC)}
}

// -----------------------------------------------------------------------------
// RunSync
// -----------------------------------------------------------------------------

func TestRunSync_Directory(t *testing.T) {
	dir := cardsDir(t, map[string]string{
		"john.vcf":    "FN:John Doe\nBDAY:20000101",
		"couple.vcf":  "FN:The Smiths\nANNIVERSARY:2010-06-20",
		"vague.vcf":   "FN:Vague\nBDAY;VALUE=text:circa 1800",
		"invalid.vcf": "FN:Bad\nX-CUSTOM:1",
	})

	gen := &engine.Generator{Clock: at(2025, 1, 1)}
	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{CardsDir: dir})
	require.NoError(t, err)

	assert.Len(t, snap.Entries, 3)
	assert.Equal(t, 1, snap.Skipped)
	assert.Equal(t, 1, snap.Today, "John's birthday is today")

	ics := string(snap.ICS)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "SUMMARY:Birthday: John Doe (25)")
	assert.Contains(t, ics, "SUMMARY:Anniversary: The Smiths (15)")
	assert.NotContains(t, ics, "Vague")
	assert.Equal(t, 6, strings.Count(ics, "BEGIN:VEVENT"))

	require.Len(t, snap.Upcoming, 2)
	assert.Equal(t, "John Doe", snap.Upcoming[0].Name, "sorted by next occurrence")
	assert.Equal(t, config.EventKindBirthday, snap.Upcoming[0].Kind)
	assert.Equal(t, 25, snap.Upcoming[0].AgeNext)
	assert.Equal(t, config.EventKindAnniversary, snap.Upcoming[1].Kind)
}

func TestRunSync_Errors(t *testing.T) {
	gen := &engine.Generator{Clock: at(2025, 1, 1)}

	_, err := gen.RunSync(context.Background(), engine.SyncConfig{})
	assert.EqualError(t, err, config.ErrLocalPathEmpty)

	_, err = gen.RunSync(context.Background(), engine.SyncConfig{CardsDir: filepath.Join(t.TempDir(), "nope")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gen.RunSync(ctx, engine.SyncConfig{CardsDir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunSync_EmptyDirectoryServesStub(t *testing.T) {
	gen := &engine.Generator{Clock: at(2025, 1, 1)}
	snap, err := gen.RunSync(context.Background(), engine.SyncConfig{CardsDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(snap.ICS))
	assert.Zero(t, snap.Today)
}

// -----------------------------------------------------------------------------
// Generate
// -----------------------------------------------------------------------------

func TestGenerate_YearRange(t *testing.T) {
	gen := &engine.Generator{Clock: at(2025, 1, 1)}
	snap, err := gen.Generate(context.Background(), []library.Entry{entry("Range", "1990-12-31", "")}, "")
	require.NoError(t, err)

	ics := string(snap.ICS)
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20241231")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20251231")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20261231")
	assert.Equal(t, 3, strings.Count(ics, "BEGIN:VEVENT"))
}

func TestGenerate_BornThisYear(t *testing.T) {
	gen := &engine.Generator{
		Clock: at(2025, 1, 1),
		FormatSummary: func(kind, name string, age int, yearKnown bool) string {
			if yearKnown && age == 0 {
				return fmt.Sprintf("%s: %s (Birth)", kind, name)
			}
			return fmt.Sprintf("%s: %s (%d)", kind, name, age)
		},
	}
	snap, err := gen.Generate(context.Background(), []library.Entry{entry("Baby", "20250501", "")}, "")
	require.NoError(t, err)

	ics := string(snap.ICS)
	assert.NotContains(t, ics, "DTSTART;VALUE=DATE:20240501")
	assert.Contains(t, ics, "SUMMARY:birthday: Baby (Birth)")
	assert.Contains(t, ics, "SUMMARY:birthday: Baby (1)")
	assert.Equal(t, 2, strings.Count(ics, "BEGIN:VEVENT"))
}

func TestGenerate_FutureDateHasNoEvents(t *testing.T) {
	gen := &engine.Generator{Clock: at(2025, 1, 1)}
	snap, err := gen.Generate(context.Background(), []library.Entry{entry("Future", "20270101", "")}, "")
	require.NoError(t, err)
	assert.NotContains(t, string(snap.ICS), "BEGIN:VEVENT")
}

func TestGenerate_LeaplingOnMarchFirst(t *testing.T) {
	gen := &engine.Generator{Clock: at(2025, 3, 1)}
	snap, err := gen.Generate(context.Background(), []library.Entry{entry("Leap Baby", "2000-02-29", "")}, "")
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Today, "Feb 29 falls on Mar 1 in a non-leap year")
	require.Len(t, snap.Upcoming, 1)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), snap.Upcoming[0].NextOccurrence)
}

func TestGenerate_DateForms(t *testing.T) {
	tests := []struct {
		name      string
		date      library.Date
		expectEvt bool
	}{
		{"basic", library.Date{Value: "19901025"}, true},
		{"extended", library.Date{Value: "1990-10-25"}, true},
		{"with time", library.Date{Value: "19901025T1200"}, true},
		{"year-less basic", library.Date{Value: "--1025"}, true},
		{"year-less extended", library.Date{Value: "--10-25"}, true},
		{"year only", library.Date{Value: "1990"}, false},
		{"garbage", library.Date{Value: "not-a-date"}, false},
		{"text", library.Date{Value: "19901025", Text: true}, false},
		{"absent", library.Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &engine.Generator{Clock: at(2025, 1, 1)}
			e := library.Entry{File: "t.vcf", Name: "Test", Birthday: tt.date}
			snap, err := gen.Generate(context.Background(), []library.Entry{e}, "")
			require.NoError(t, err)
			if tt.expectEvt {
				assert.Contains(t, string(snap.ICS), "BEGIN:VEVENT")
			} else {
				assert.NotContains(t, string(snap.ICS), "BEGIN:VEVENT")
			}
		})
	}
}

func TestGenerate_YearLessHasNoAge(t *testing.T) {
	gen := &engine.Generator{Clock: at(2025, 1, 1)}
	snap, err := gen.Generate(context.Background(), []library.Entry{entry("Ann", "--0704", "")}, "")
	require.NoError(t, err)

	ics := string(snap.ICS)
	assert.Contains(t, ics, "SUMMARY:Birthday: Ann\r\n")
	assert.Equal(t, 3, strings.Count(ics, "BEGIN:VEVENT"))
	assert.False(t, snap.Upcoming[0].YearKnown)
}

func TestGenerate_ReminderAlarm(t *testing.T) {
	gen := &engine.Generator{Clock: at(2025, 1, 1)}
	snap, err := gen.Generate(context.Background(), []library.Entry{entry("Alarm", "19800202", "")}, "-P1D")
	require.NoError(t, err)

	ics := string(snap.ICS)
	assert.Equal(t, 3, strings.Count(ics, "BEGIN:VALARM"))
	assert.Contains(t, ics, "TRIGGER:-P1D")
	assert.Contains(t, ics, "ACTION:DISPLAY")
}

func TestGenerate_StableUIDs(t *testing.T) {
	gen := &engine.Generator{Clock: at(2025, 1, 1)}
	entries := []library.Entry{entry("Same", "19800202", "20000202")}

	a, err := gen.Generate(context.Background(), entries, "")
	require.NoError(t, err)
	b, err := gen.Generate(context.Background(), entries, "")
	require.NoError(t, err)

	require.Len(t, a.Upcoming, 2)
	assert.Equal(t, a.Upcoming[0].UID, b.Upcoming[0].UID)
	assert.NotEqual(t, a.Upcoming[0].UID, a.Upcoming[1].UID, "birthday and anniversary differ")
}

func TestGenerate_UnnamedEntryUsesFallback(t *testing.T) {
	gen := &engine.Generator{Clock: at(2025, 1, 1)}
	snap, err := gen.Generate(context.Background(), []library.Entry{entry("", "--0101", "")}, "")
	require.NoError(t, err)
	assert.Contains(t, string(snap.ICS), "SUMMARY:Birthday: "+config.FallbackName)
}

func TestDefaultSummary(t *testing.T) {
	assert.Equal(t, "Birthday: A", engine.DefaultSummary(config.EventKindBirthday, "A", 0, true))
	assert.Equal(t, "Birthday: A (3)", engine.DefaultSummary(config.EventKindBirthday, "A", 3, true))
	assert.Equal(t, "Birthday: A", engine.DefaultSummary(config.EventKindBirthday, "A", 3, false))
	assert.Equal(t, "Anniversary: B (10)", engine.DefaultSummary(config.EventKindAnniversary, "B", 10, true))
	assert.Equal(t, "Anniversary: B", engine.DefaultSummary(config.EventKindAnniversary, "B", 0, false))
}
