// Package i18n holds the localized strings shown by the home panel.
//
// Message keys are the English source strings. Lookups fall back to English
// for locales without a translation.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	Highlights    = "Highlights"
	TopSites      = "TOP SITES"
	Opened        = "Opened %s"
	Copied        = "Copied %s"
	CopyFailed    = "Copy failed: %v"
	RecordFailed  = "Could not record visit: %v"
	Reloading     = "Reloading…"
	OpenLocation  = "Open location"
	HelpTitle     = "Keyboard shortcuts"
	EmptyPanel    = "No history yet. Visit a site to get started."
	DatabaseLabel = "Database: %s"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		Highlights:    "Highlights",
		TopSites:      "TOP SITES",
		Opened:        "Opened %s",
		Copied:        "Copied %s",
		CopyFailed:    "Copy failed: %v",
		RecordFailed:  "Could not record visit: %v",
		Reloading:     "Reloading…",
		OpenLocation:  "Open location",
		HelpTitle:     "Keyboard shortcuts",
		EmptyPanel:    "No history yet. Visit a site to get started.",
		DatabaseLabel: "Database: %s",
	},
	language.French: {
		Highlights:    "Éléments marquants",
		TopSites:      "SITES LES PLUS VISITÉS",
		Opened:        "Ouvert : %s",
		Copied:        "Copié : %s",
		CopyFailed:    "Échec de la copie : %v",
		RecordFailed:  "Impossible d’enregistrer la visite : %v",
		Reloading:     "Rechargement…",
		OpenLocation:  "Ouvrir l’adresse",
		HelpTitle:     "Raccourcis clavier",
		EmptyPanel:    "Aucun historique. Visitez un site pour commencer.",
		DatabaseLabel: "Base de données : %s",
	},
	language.German: {
		Highlights:    "Überblick",
		TopSites:      "WICHTIGE SEITEN",
		Opened:        "Geöffnet: %s",
		Copied:        "Kopiert: %s",
		CopyFailed:    "Kopieren fehlgeschlagen: %v",
		RecordFailed:  "Besuch konnte nicht gespeichert werden: %v",
		Reloading:     "Wird neu geladen…",
		OpenLocation:  "Adresse öffnen",
		HelpTitle:     "Tastenkürzel",
		EmptyPanel:    "Noch keine Chronik. Besuchen Sie eine Seite.",
		DatabaseLabel: "Datenbank: %s",
	},
}

// supported is ordered so English is the matcher's default.
var supported = []language.Tag{language.English, language.French, language.German}

var (
	cat     = buildCatalog()
	matcher = language.NewMatcher(supported)
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, tag := range supported {
		for key, msg := range translations[tag] {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Localizer formats messages for one locale.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for a BCP 47 locale such as "fr" or "de-CH".
// Unknown or empty locales use English.
func New(locale string) *Localizer {
	tag := language.English
	if locale != "" {
		matched, _ := language.MatchStrings(matcher, locale)
		base, _ := matched.Base()
		tag = language.Make(base.String())
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}
}

// Default returns the English localizer.
func Default() *Localizer {
	return New("")
}

// Tag returns the matched language.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// T formats the message for key.
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Supported lists the locales with translations.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}
