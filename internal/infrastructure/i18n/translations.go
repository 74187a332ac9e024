package i18n

import (
	"embed"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"zungenrede/internal/ports/output"
)

//go:embed active.*.toml
var localeFS embed.FS

var catalogFiles = []string{"active.en.toml", "active.ru.toml"}

var _ output.Catalog = (*Translator)(nil)

// Translator renders reply texts from the embedded go-i18n catalogs.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	log             logrus.FieldLogger
}

// NewTranslator loads the embedded catalogs with defaultLocale (e.g. "en") as
// the fallback language. An unknown locale or a broken catalog is an error.
func NewTranslator(defaultLocale string, log logrus.FieldLogger) (*Translator, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("i18n: parse locale %q: %w", defaultLocale, err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range catalogFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", file, err)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		log:             log,
	}, nil
}

// Languages lists the languages that have a catalog.
func (t *Translator) Languages() []language.Tag {
	return t.bundle.LanguageTags()
}

// T renders key for locale, falling back to the default language and then to
// the key itself. A "Count" entry in data selects the plural form.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	cfg := &i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	}
	if n, ok := data["Count"]; ok {
		cfg.PluralCount = n
	}

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(cfg)
	if err != nil {
		t.log.WithFields(logrus.Fields{"key": key, "locales": languages}).WithError(err).Warn("i18n: localize failed")
		return key
	}
	return msg
}
