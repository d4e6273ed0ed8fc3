package vcf_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/emersion/go-vcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/vcf"
)

func TestMarshal_MinimalIsByteExact(t *testing.T) {
	src := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:John Doe\r\nEND:VCARD\r\n"
	card, err := vcf.Parse([]byte(src))
	require.NoError(t, err)

	out, err := vcf.Marshal(card)
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestMarshal_CanonicalOrder(t *testing.T) {
	src := crlf(
		"BEGIN:VCARD",
		"VERSION:4.0",
		"EMAIL;TYPE=home:jane@example.com",
		"ANNIVERSARY;VALUE=text:long ago",
		"grp.FN;LANGUAGE=en:Jane;Roe",
		"NOTE:a;;c",
		"BDAY:19960415T1230",
		"N:Roe;Jane;;;",
		"END:VCARD",
	)
	card, err := vcf.Parse(src)
	require.NoError(t, err)
	require.NoError(t, vcf.Validate(card))

	out, err := vcf.Marshal(card)
	require.NoError(t, err)

	want := crlf(
		"BEGIN:VCARD",
		"VERSION:4.0",
		"grp.FN;LANGUAGE=en:Jane;Roe",
		"N:Roe;Jane;;;",
		"BDAY:19960415T1230",
		"ANNIVERSARY;VALUE=text:long ago",
		"EMAIL;TYPE=home:jane@example.com",
		"NOTE:a;;c",
		"END:VCARD",
	)
	assert.Equal(t, string(want), string(out))
}

// TestRoundTrip checks parse(write(c)) == c for validated cards whose N, if any,
// is already the first optional property.
func TestRoundTrip(t *testing.T) {
	full := vcf.NewMinimalCard("Jane Roe")
	full.FN.Group = "item1"
	full.FN.AddParameter("LANGUAGE", "en")
	full.Optional.InsertBack(vcf.NewProperty("", "N", "Roe", "Jane", "", "", ""))
	full.Optional.InsertBack(vcf.NewProperty("work", "TEL", "+1-555-0100").AddParameter("TYPE", "voice").AddParameter("PREF", "1"))
	full.Optional.InsertBack(vcf.NewProperty("", "NOTE", "a", "", "c", ""))
	full.Birthday = vcf.StructuredDate{Date: "--0415"}
	full.Anniversary = vcf.TextDate{Text: "summer"}

	timed := vcf.NewMinimalCard("T")
	timed.Birthday = vcf.StructuredDate{Date: "19531015", Time: "231000"}

	for name, card := range map[string]*vcf.Card{
		"minimal": vcf.NewMinimalCard("John Doe"),
		"full":    full,
		"timed":   timed,
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, vcf.Validate(card))

			data, err := vcf.Marshal(card)
			require.NoError(t, err)

			back, err := vcf.Parse(data)
			require.NoError(t, err)
			assert.Equal(t, card, back)
		})
	}
}

func TestMarshal_DecodesWithGoVCard(t *testing.T) {
	card := vcf.NewMinimalCard("Jane Roe")
	card.Optional.InsertBack(vcf.NewProperty("", "N", "Roe", "Jane", "", "", ""))
	card.Optional.InsertBack(vcf.NewProperty("", "EMAIL", "jane@example.com"))
	card.Birthday = vcf.StructuredDate{Date: "19960415"}

	data, err := vcf.Marshal(card)
	require.NoError(t, err)

	decoded, err := vcard.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	assert.Equal(t, "4.0", decoded.Value(vcard.FieldVersion))
	assert.Equal(t, "Jane Roe", decoded.PreferredValue(vcard.FieldFormattedName))
	assert.Equal(t, "19960415", decoded.Value(vcard.FieldBirthday))
	assert.Equal(t, "jane@example.com", decoded.Value(vcard.FieldEmail))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_Errors(t *testing.T) {
	err := vcf.Write(failingWriter{}, vcf.NewMinimalCard("A"))
	require.Error(t, err)
	assert.ErrorIs(t, err, vcf.WriteError)
	assert.Contains(t, err.Error(), "disk full")

	assert.ErrorIs(t, vcf.Write(&bytes.Buffer{}, nil), vcf.WriteError)

	bad := vcf.NewMinimalCard("A")
	bad.Birthday = &vcf.TextDate{Text: "x"}
	assert.ErrorIs(t, vcf.Write(&bytes.Buffer{}, bad), vcf.WriteError)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.vcf")

	require.NoError(t, vcf.WriteFile(path, vcf.NewMinimalCard("Written")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Written\r\nEND:VCARD\r\n", string(data))

	err = vcf.WriteFile(filepath.Join(dir, "missing", "out.vcf"), vcf.NewMinimalCard("x"))
	assert.ErrorIs(t, err, vcf.WriteError)
}

func TestMinimalCardAndRename(t *testing.T) {
	c := vcf.NewMinimalCard("")
	assert.Equal(t, "Default Name", c.DisplayName())
	require.NoError(t, vcf.Validate(c))

	require.NoError(t, c.SetFormattedName("New Name"))
	assert.Equal(t, []string{"New Name"}, c.FN.Values.Slice())

	empty := &vcf.Card{}
	require.NoError(t, empty.SetFormattedName("Fresh"))
	assert.Equal(t, "FN", empty.FN.Name)
	assert.Equal(t, "Fresh", empty.DisplayName())

	var nilCard *vcf.Card
	assert.ErrorIs(t, nilCard.SetFormattedName("x"), vcf.InvalidFile)
}

func TestCard_DisplayHelpers(t *testing.T) {
	c := vcf.NewMinimalCard("Jane")
	assert.Equal(t, "None", c.BirthdayString())
	assert.Equal(t, "None", c.AnniversaryString())

	c.Birthday = vcf.StructuredDate{Date: "19960415"}
	c.Anniversary = vcf.TextDate{Text: "summer"}
	c.Optional.InsertBack(vcf.NewProperty("", "EMAIL", "j@example.com"))

	assert.Equal(t, "Date: 19960415, Time: , UTC: No", c.BirthdayString())
	assert.Equal(t, "Text: summer", c.AnniversaryString())
	assert.Equal(t, 1, c.NumOptional())

	p, ok := c.Lookup("email")
	require.True(t, ok)
	assert.Equal(t, "j@example.com", p.FirstValue())

	dump := c.String()
	assert.Contains(t, dump, "Name: FN")
	assert.Contains(t, dump, "Name: EMAIL")
	assert.Contains(t, dump, "Birthday: Date: 19960415")

	var nilCard *vcf.Card
	assert.Equal(t, "null", nilCard.String())
	assert.Equal(t, "", nilCard.DisplayName())
}
