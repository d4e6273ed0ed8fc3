package vcf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tartampluch/go-contacts/internal/config"
)

// Write emits c in canonical order:
// BEGIN, VERSION, FN, N, BDAY, ANNIVERSARY, remaining optional properties, END.
// Every line ends with CRLF. Any I/O failure is a WriteError.
func Write(w io.Writer, c *Card) error {
	if c == nil || c.FN == nil {
		return newError(WriteError, 0, config.ErrNilCard)
	}
	cw := &cardWriter{w: bufio.NewWriter(w)}

	cw.line(config.MarkerBegin)
	cw.line(config.VersionPrefix + config.SupportedVersion)
	cw.property(c.FN)
	// N is promoted ahead of the dates; every other property keeps its order.
	for p := range c.Optional.Values() {
		if p != nil && p.Name == config.VCardN {
			cw.property(p)
		}
	}
	cw.date(config.VCardBDAY, c.Birthday)
	cw.date(config.VCardAnniversary, c.Anniversary)
	for p := range c.Optional.Values() {
		if p == nil || p.Name != config.VCardN {
			cw.property(p)
		}
	}
	cw.line(config.MarkerEnd)

	// Nothing reaches w until the flush.
	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	if cw.err != nil {
		return wrapError(WriteError, config.ErrFileWrite, cw.err)
	}
	return nil
}

// Marshal returns the canonical text of c.
func Marshal(c *Card) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes c to path, replacing any existing file.
func WriteFile(path string, c *Card) (err error) {
	if c == nil || c.FN == nil {
		return newError(WriteError, 0, config.ErrNilCard)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		return wrapError(WriteError, config.ErrFileWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = wrapError(WriteError, config.ErrFileWrite, cerr)
		}
	}()

	if err := Write(f, c); err != nil {
		return err
	}
	slog.Debug(config.MsgCardWritten,
		config.LogKeyComponent, config.CompWriter,
		config.LogKeyFile, path,
	)
	return nil
}

// cardWriter remembers the first write error so emission code stays linear.
type cardWriter struct {
	w   *bufio.Writer
	err error
}

func (cw *cardWriter) printf(format string, args ...any) {
	if cw.err != nil {
		return
	}
	_, cw.err = fmt.Fprintf(cw.w, format, args...)
}

func (cw *cardWriter) line(s string) {
	cw.printf("%s%s", s, config.LineEnding)
}

func (cw *cardWriter) property(p *Property) {
	if p == nil {
		cw.fail(config.ErrNilProperty)
		return
	}
	if p.Group != "" {
		cw.printf("%s.", p.Group)
	}
	cw.printf("%s", p.Name)
	for param := range p.Parameters.Values() {
		cw.printf(";%s=%s", param.Name, param.Value)
	}
	cw.printf(":%s%s", p.Values.Join(";"), config.LineEnding)
}

func (cw *cardWriter) date(name string, dt DateTime) {
	switch d := dt.(type) {
	case nil:
		// Absent date, no line.
	case TextDate:
		cw.printf("%s;%s=%s:%s%s", name, config.ParamValue, config.ParamValueText, d.Text, config.LineEnding)
	case StructuredDate:
		cw.printf("%s:%s%s", name, d.Value(), config.LineEnding)
	default:
		cw.fail(config.ErrUnknownDateTime)
	}
}

func (cw *cardWriter) fail(reason string) {
	if cw.err == nil {
		cw.err = errors.New(reason)
	}
}
