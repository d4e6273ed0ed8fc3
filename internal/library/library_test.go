package library_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/library"
	"github.com/tartampluch/go-contacts/internal/vcf"
)

func writeCard(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	body := strings.Join(append(append([]string{"BEGIN:VCARD", "VERSION:4.0"}, lines...), "END:VCARD"), "\r\n") + "\r\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeCard(t, dir, "jane.vcf", "FN:Jane Roe", "BDAY:19960415", "ANNIVERSARY;VALUE=text:spring", "EMAIL:j@example.com")
	writeCard(t, dir, "bob.VCARD", "FN:Bob")
	writeCard(t, dir, "broken.vcf", "EMAIL:nofn@example.com")
	writeCard(t, dir, "custom.vcf", "FN:X", "X-SKYPE:x")
	writeCard(t, dir, "notes.txt", "FN:Ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.vcf"), 0o700))

	res, err := library.Scan(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	library.SortByName(res.Entries, "en")
	assert.Equal(t, "Bob", res.Entries[0].Name)

	jane := res.Entries[1]
	assert.Equal(t, "Jane Roe", jane.Name)
	assert.Equal(t, filepath.Join(dir, "jane.vcf"), jane.File)
	assert.Equal(t, library.Date{Value: "19960415"}, jane.Birthday)
	assert.Equal(t, library.Date{Value: "spring", Text: true}, jane.Anniversary)
	assert.Equal(t, 1, jane.NumProps)
	assert.Positive(t, jane.Size)
	assert.False(t, jane.Modified.IsZero())

	require.Len(t, res.Skipped, 2)
	kinds := map[string]vcf.Kind{}
	for _, s := range res.Skipped {
		kinds[filepath.Base(s.File)] = s.Kind
	}
	assert.Equal(t, vcf.InvalidCard, kinds["broken.vcf"])
	assert.Equal(t, vcf.InvalidProperty, kinds["custom.vcf"])
}

func TestScan_Errors(t *testing.T) {
	_, err := library.Scan(context.Background(), "")
	assert.Error(t, err)

	_, err = library.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	writeCard(t, dir, "a.vcf", "FN:A")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = library.Scan(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeCard(t, dir, "a.vcf", "FN:A", "N:;;;;")

	entry, card, err := library.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "A", entry.Name)
	assert.Equal(t, "A", card.DisplayName())
	assert.True(t, entry.Birthday.IsZero())

	bad := writeCard(t, dir, "b.vcf", "FN:B", "N:a;b")
	_, card, err = library.Load(bad)
	assert.Nil(t, card)
	assert.ErrorIs(t, err, vcf.InvalidProperty)
}

func TestSortByName(t *testing.T) {
	entries := []library.Entry{
		{Name: "zoé", File: "1"},
		{Name: "Émile", File: "2"},
		{Name: "alice", File: "3"},
		{Name: "Bob", File: "5"},
		{Name: "Bob", File: "4"},
	}
	library.SortByName(entries, "fr")

	var got []string
	for _, e := range entries {
		got = append(got, e.Name+"/"+e.File)
	}
	assert.Equal(t, []string{"alice/3", "Bob/4", "Bob/5", "Émile/2", "zoé/1"}, got)
}

func TestSortByBirthday(t *testing.T) {
	entries := []library.Entry{
		{Name: "Old", Birthday: library.Date{Value: "19500610"}},
		{Name: "Young", Birthday: library.Date{Value: "2010-06-02"}},
		{Name: "Zed", Birthday: library.Date{Value: "--0621"}},
		{Name: "Mid", Birthday: library.Date{Value: "19900615T0800"}},
		{Name: "Amy", Birthday: library.Date{Value: "--06-30"}},
		{Name: "Twin B", Birthday: library.Date{Value: "19900615"}},
	}
	library.SortByBirthday(entries, "en")

	var got []string
	for _, e := range entries {
		got = append(got, e.Name)
	}
	assert.Equal(t, []string{"Amy", "Zed", "Young", "Mid", "Twin B", "Old"}, got)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		value     string
		want      time.Time
		yearKnown bool
	}{
		{"19960415", time.Date(1996, 4, 15, 0, 0, 0, 0, time.UTC), true},
		{"1996-04-15", time.Date(1996, 4, 15, 0, 0, 0, 0, time.UTC), true},
		{"19960415T1230", time.Date(1996, 4, 15, 0, 0, 0, 0, time.UTC), true},
		{"--0415", time.Date(2000, 4, 15, 0, 0, 0, 0, time.UTC), false},
		{"--04-15", time.Date(2000, 4, 15, 0, 0, 0, 0, time.UTC), false},
		{"--0229", time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, yearKnown, err := library.ParseDate(tt.value)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
			assert.Equal(t, tt.yearKnown, yearKnown)
		})
	}

	for _, bad := range []string{"", "1996", "circa 1800", "19961345", "T1230"} {
		_, _, err := library.ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestFilterByMonth(t *testing.T) {
	entries := []library.Entry{
		{Name: "basic", Birthday: library.Date{Value: "19960615"}},
		{Name: "dash", Birthday: library.Date{Value: "1980-06-01"}},
		{Name: "noyear", Birthday: library.Date{Value: "--0620"}},
		{Name: "noyear-dash", Birthday: library.Date{Value: "--06-30"}},
		{Name: "july", Birthday: library.Date{Value: "19960715"}},
		{Name: "text", Birthday: library.Date{Value: "June", Text: true}},
		{Name: "none"},
	}

	var names []string
	for _, e := range library.FilterByMonth(entries, 6) {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"basic", "dash", "noyear", "noyear-dash"}, names)
	assert.Len(t, library.FilterByMonth(entries, 0), len(entries))
	assert.Empty(t, library.FilterByMonth(entries, 1))
}

func TestValidateMonth(t *testing.T) {
	assert.NoError(t, library.ValidateMonth(0))
	assert.NoError(t, library.ValidateMonth(1))
	assert.NoError(t, library.ValidateMonth(12))
	assert.Error(t, library.ValidateMonth(13))
	assert.Error(t, library.ValidateMonth(-1))
}
