package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/vcf"
)

// RemoteConfig locates a remote address book.
type RemoteConfig struct {
	URL  string
	User string
	Pass string
}

// ImportResult lists the card files written by Import and how many cards were rejected.
type ImportResult struct {
	Written []string
	Skipped int
}

// SplitAddressBook decodes a stream holding any number of vCards (3.0 or 4.0)
// and re-encodes each one as a standalone vCard 4.0 document. Properties whose
// name is not accepted by the validator are dropped.
func SplitAddressBook(r io.Reader) ([][]byte, error) {
	dec := vcard.NewDecoder(r)
	var docs [][]byte
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrStreamSplit, err)
		}

		vcard.ToV4(card)
		for name := range card {
			if !vcf.IsAllowedName(name) {
				delete(card, name)
			}
		}

		var buf bytes.Buffer
		if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrStreamSplit, err)
		}
		docs = append(docs, buf.Bytes())
	}

	slog.Debug(config.MsgStreamSplit,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(docs),
	)
	return docs, nil
}

// Import downloads the remote address book, keeps every card that parses and
// validates, and writes each one in canonical form into dir. Existing files are
// replaced only when overwrite is set.
func (g *Generator) Import(ctx context.Context, remote RemoteConfig, dir string, overwrite bool) (*ImportResult, error) {
	if remote.URL == "" {
		return nil, errors.New(config.ErrWebURLEmpty)
	}
	if g.Fetcher == nil {
		return nil, errors.New(config.ErrFetcherMissing)
	}
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	rc, err := g.Fetcher.Fetch(ctx, remote.URL, remote.User, remote.Pass)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	docs, err := SplitAddressBook(rc)
	if err != nil {
		return nil, err
	}

	log := slog.With(config.LogKeyComponent, config.CompEngine, config.LogKeyDir, dir)
	res := &ImportResult{}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := vcf.Parse(doc)
		if err == nil {
			err = vcf.Validate(card)
		}
		if err != nil {
			log.Warn(config.MsgSkippedCard,
				config.LogKeyKind, vcf.KindOf(err).String(),
				config.LogKeyError, err,
			)
			res.Skipped++
			continue
		}

		path := filepath.Join(dir, cardFileName(card, doc))
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				log.Warn(config.ErrFileExists, config.LogKeyFile, path)
				res.Skipped++
				continue
			}
		}
		if err := vcf.WriteFile(path, card); err != nil {
			return nil, err
		}
		log.Debug(config.MsgCardImported, config.LogKeyFile, path, config.LogKeyName, card.DisplayName())
		res.Written = append(res.Written, path)
	}
	return res, nil
}

// cardFileName derives a stable file name from the card UID, or from a
// name-based UUID of the document when the card has none.
func cardFileName(card *vcf.Card, doc []byte) string {
	id := ""
	if p, ok := card.Lookup(config.VCardUID); ok {
		id = strings.TrimPrefix(p.FirstValue(), config.URNUUIDPrefix)
	}
	id = sanitizeFileName(id)
	if id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceURL, doc).String()
	}
	return id + config.ExtVCF
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
