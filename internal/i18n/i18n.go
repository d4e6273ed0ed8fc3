// Package i18n translates user-facing report strings and error kinds.
package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/vcf"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator wraps a go-i18n bundle and the localizer for one language.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      string
	languages []string
}

// New loads every embedded active.<lang>.json file and selects lang.
// Unknown or empty languages fall back to config.DefaultLanguage.
func New(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	tr := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		tr.languages = append(tr.languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	tr.SetLanguage(lang)
	return tr
}

// SetLanguage switches the active language.
func (t *Translator) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	t.lang = lang
	t.localizer = i18n.NewLocalizer(t.bundle, lang, config.DefaultLanguage)
}

// Language returns the active language code.
func (t *Translator) Language() string { return t.lang }

// Languages returns the language codes found in the embedded locales.
func (t *Translator) Languages() []string { return t.languages }

// Msg translates key. A missing key is returned unchanged.
func (t *Translator) Msg(key string) string {
	return t.MsgData(key, nil)
}

// MsgData translates key, expanding its template with data.
func (t *Translator) MsgData(key string, data map[string]any) string {
	if t == nil || t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// Kind returns the localized description of an error kind.
func (t *Translator) Kind(k vcf.Kind) string {
	key, ok := kindKeys[k]
	if !ok {
		return k.String()
	}
	return t.Msg(key)
}

var kindKeys = map[vcf.Kind]string{
	vcf.OK:              config.TKeyKindOK,
	vcf.InvalidFile:     config.TKeyKindInvalidFile,
	vcf.InvalidCard:     config.TKeyKindInvalidCard,
	vcf.InvalidProperty: config.TKeyKindInvalidProperty,
	vcf.InvalidDateTime: config.TKeyKindInvalidDateTime,
	vcf.WriteError:      config.TKeyKindWriteError,
	vcf.OtherError:      config.TKeyKindOtherError,
}

// Summary renders the localized title of a calendar event. It has the shape
// of engine.SummaryFunc. The age is shown only for a known, positive age.
func (t *Translator) Summary(kind, name string, age int, yearKnown bool) string {
	key, keyAge := config.TKeyEvtBirthday, config.TKeyEvtBirthdayAge
	if kind == config.EventKindAnniversary {
		key, keyAge = config.TKeyEvtAnniversary, config.TKeyEvtAnniversaryAge
	}
	if yearKnown && age > 0 {
		return t.MsgData(keyAge, map[string]any{"Name": name, "Age": age})
	}
	return t.MsgData(key, map[string]any{"Name": name})
}
