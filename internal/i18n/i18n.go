package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/famcal/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog holds the translation bundle for weekday labels.
type Catalog struct {
	bundle    *i18n.Bundle
	languages []string
}

// NewCatalog loads every embedded active.<lang>.json file.
// Files that fail to load are logged and skipped.
func NewCatalog() *Catalog {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	c := &Catalog{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return c
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

		c.languages = append(c.languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	return c
}

// Languages returns the language codes that loaded successfully.
func (c *Catalog) Languages() []string {
	return append([]string(nil), c.languages...)
}

// Weekdays returns the seven column labels, Sunday first, for lang.
// Unknown languages fall back to English; a missing key falls back to
// config.FallbackWeekdays.
func (c *Catalog) Weekdays(lang string) [config.DaysPerWeek]string {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	localizer := i18n.NewLocalizer(c.bundle, lang, config.DefaultLanguage)

	var out [config.DaysPerWeek]string
	for i, key := range config.WeekdayKeys {
		msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: key})
		if err != nil || msg == "" {
			slog.Debug(config.MsgTransMissing,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyKey, key,
				config.LogKeyLang, lang,
				config.LogKeyError, err,
			)
			msg = config.FallbackWeekdays[i]
		}
		out[i] = msg
	}
	return out
}
