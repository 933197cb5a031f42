// Package i18n provides localized printers for the command-line messages.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language
var DefaultLang = language.English

// SupportedLangs are the languages we support
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

// Message keys used by the command layer. English text is the key itself.
const (
	MsgSaved         = "Saved configuration %s\n"
	MsgLoaded        = "Loaded configuration %s\n"
	MsgBackedUp      = "Backed up current configuration as %s\n"
	MsgRemoved       = "Removed configuration %s\n"
	MsgRenamed       = "Renamed configuration %s to %s\n"
	MsgUpdated       = "Updated %s; reboot required\n"
	MsgUnchanged     = "No changes to %s\n"
	MsgNoDifferences = "No differences between %s and %s\n"
	MsgError         = "Error: %v\n"
	MsgUsage         = "Usage: %s <command> [options]\n"
	MsgCommandUsage  = "Usage: %s\n"
	MsgUnknownCmd    = "Unknown command: %s\n"
)

func init() {
	de := language.German
	message.SetString(de, MsgSaved, "Konfiguration %s gespeichert\n")
	message.SetString(de, MsgLoaded, "Konfiguration %s geladen\n")
	message.SetString(de, MsgBackedUp, "Aktuelle Konfiguration als %s gesichert\n")
	message.SetString(de, MsgRemoved, "Konfiguration %s entfernt\n")
	message.SetString(de, MsgRenamed, "Konfiguration %s in %s umbenannt\n")
	message.SetString(de, MsgUpdated, "%s aktualisiert; Neustart erforderlich\n")
	message.SetString(de, MsgUnchanged, "Keine Änderungen an %s\n")
	message.SetString(de, MsgNoDifferences, "Keine Unterschiede zwischen %s und %s\n")
	message.SetString(de, MsgError, "Fehler: %v\n")
	message.SetString(de, MsgUsage, "Aufruf: %s <Befehl> [Optionen]\n")
	message.SetString(de, MsgCommandUsage, "Aufruf: %s\n")
	message.SetString(de, MsgUnknownCmd, "Unbekannter Befehl: %s\n")
}

// MatchLanguage returns the best matching language for the given tags
func MatchLanguage(acceptLang string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLang)
	tag, _, _ := matcher.Match(tags...)
	return tag
}

// NewPrinter returns a message printer for the given language
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// NewCLIPrinter returns a printer for the system's locale (from env vars)
func NewCLIPrinter() *message.Printer {
	lang := os.Getenv("LC_ALL")
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	if lang == "" || lang == "C" || lang == "POSIX" {
		return NewPrinter(DefaultLang)
	}

	// Strip encoding (e.g. .UTF-8) if present
	if i := strings.Index(lang, "."); i != -1 {
		lang = lang[:i]
	}
	lang = strings.ReplaceAll(lang, "_", "-")

	tag, err := language.Parse(lang)
	if err != nil {
		tag = MatchLanguage(lang)
	} else {
		_, idx, _ := matcher.Match(tag)
		tag = SupportedLangs[idx]
	}

	return NewPrinter(tag)
}
