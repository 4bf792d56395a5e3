package locales

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

var (
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          = zerolog.Nop()
)

// Init initializes the i18n bundle by loading the embedded message files and
// setting the default language. An unparsable code falls back to Russian.
func Init(defaultLangCode string, log zerolog.Logger) error {
	logger = log.With().Str("component", "locales").Logger()

	var err error
	defaultLanguage, err = language.Parse(defaultLangCode)
	if err != nil {
		logger.Warn().Err(err).Str("code", defaultLangCode).Msg("Failed to parse default language, falling back to ru")
		defaultLanguage = language.Russian
	}

	b := i18n.NewBundle(defaultLanguage)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := localeFS.ReadDir(".")
	if err != nil {
		return fmt.Errorf("failed to read embedded locales: %w", err)
	}
	loaded := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		if _, err := b.LoadMessageFileFS(localeFS, file.Name()); err != nil {
			return fmt.Errorf("failed to load message file %s: %w", file.Name(), err)
		}
		loaded++
	}
	if loaded == 0 {
		return fmt.Errorf("no message files loaded")
	}

	bundle = b
	logger.Info().Int("files", loaded).Str("default", defaultLanguage.String()).Msg("i18n bundle initialized")
	return nil
}

// DefaultLanguageTag returns the configured default language tag.
func DefaultLanguageTag() language.Tag {
	return defaultLanguage
}

// NewLocalizer creates a localizer for the given language preferences,
// falling back to the default language.
func NewLocalizer(langPrefs ...string) *i18n.Localizer {
	if bundle == nil {
		panic("locales: NewLocalizer called before Init")
	}
	return i18n.NewLocalizer(bundle, append(langPrefs, defaultLanguage.String())...)
}

// GetMessage retrieves and formats a message by its ID. When the message is
// missing in every requested language the ID itself is returned.
func GetMessage(localizer *i18n.Localizer, msgID string, templateData map[string]interface{}) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: templateData,
	})
	if err != nil {
		logger.Error().Err(err).Str("message_id", msgID).Msg("Failed to localize message")
		return msgID
	}
	return msg
}
