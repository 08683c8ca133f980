// Package i18n localises CLI output. Messages live in embedded go-i18n JSON
// files, one per language; English is the fallback for missing messages.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/dmitrijs2005/studysync/internal/logging"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator renders message IDs in one language.
type Translator struct {
	lang string
	loc  *goi18n.Localizer
	log  logging.Logger
}

func loadBundle() (*goi18n.Bundle, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
	}
	return bundle, nil
}

// New returns a Translator for lang, e.g. "tr" or "en-GB".
func New(lang string, log logging.Logger) (*Translator, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", lang, err)
	}
	if log == nil {
		log = logging.Nop()
	}
	bundle, err := loadBundle()
	if err != nil {
		return nil, err
	}

	matcher := language.NewMatcher(bundle.LanguageTags())
	_, idx, _ := matcher.Match(tag)
	chosen := bundle.LanguageTags()[idx]
	base, _ := chosen.Base()

	return &Translator{
		lang: base.String(),
		loc:  goi18n.NewLocalizer(bundle, chosen.String(), language.English.String()),
		log:  log,
	}, nil
}

// Lang is the base language actually used, after matching against the
// available translations.
func (t *Translator) Lang() string { return t.lang }

// T translates a message by ID.
func (t *Translator) T(id string) string {
	return t.localize(&goi18n.LocalizeConfig{MessageID: id})
}

// Td translates a message by ID with template data.
func (t *Translator) Td(id string, data map[string]any) string {
	return t.localize(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
}

// Tp translates a pluralised message. Count is added to data.
func (t *Translator) Tp(id string, count int, data map[string]any) string {
	td := map[string]any{"Count": count}
	for k, v := range data {
		td[k] = v
	}
	return t.localize(&goi18n.LocalizeConfig{MessageID: id, PluralCount: count, TemplateData: td})
}

func (t *Translator) localize(cfg *goi18n.LocalizeConfig) string {
	s, err := t.loc.Localize(cfg)
	if err != nil {
		t.log.Warn(context.Background(), "missing translation", "id", cfg.MessageID, "lang", t.lang, "error", err)
		return cfg.MessageID
	}
	return s
}
