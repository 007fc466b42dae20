// Package dateutils parses the date formats found on Mexican invoices, bank
// statements and confirmation forms.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"fjacquet/doc-recognizer/internal/textutils"
)

// Date layouts, day first as written in Mexico.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutSlash     = "02/01/2006"
	DateLayoutDash      = "02-01-2006"
	DateLayoutDot       = "02.01.2006"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutWithMonth = "02-Jan-2006"
	DateLayoutLong      = "2 Jan 2006"
)

// CommonFormats is the list of layouts tried, in order.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutSlash,
	DateLayoutDash,
	DateLayoutDot,
	DateLayoutFull,
	time.RFC3339,
	"2006/01/02",
	"2/1/2006",
	DateLayoutWithMonth,
	"02/Jan/2006",
	DateLayoutLong,
}

// spanishMonths maps folded Spanish month names and abbreviations to the
// English abbreviations time.Parse understands.
var spanishMonths = map[string]string{
	"ene": "Jan", "enero": "Jan",
	"feb": "Feb", "febrero": "Feb",
	"mar": "Mar", "marzo": "Mar",
	"abr": "Apr", "abril": "Apr",
	"may": "May", "mayo": "May",
	"jun": "Jun", "junio": "Jun",
	"jul": "Jul", "julio": "Jul",
	"ago": "Aug", "agosto": "Aug",
	"sep": "Sep", "sept": "Sep", "septiembre": "Sep", "setiembre": "Sep",
	"oct": "Oct", "octubre": "Oct",
	"nov": "Nov", "noviembre": "Nov",
	"dic": "Dec", "diciembre": "Dec",
}

var (
	spaces = regexp.MustCompile(`\s+`)
	words  = regexp.MustCompile(`[a-z]+`)
)

// ParseDate parses dateStr with the first matching layout and returns the
// date and the layout used. Spanish month names ("03-ENE-2024",
// "2 de enero de 2024") are accepted.
func ParseDate(dateStr string) (time.Time, string, error) {
	cleaned := CleanDateString(dateStr)
	if cleaned == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}

	candidates := []string{cleaned}
	if translated := translateMonths(cleaned); translated != cleaned {
		candidates = append(candidates, translated)
	}
	for _, candidate := range candidates {
		for _, layout := range CommonFormats {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t, layout, nil
			}
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// CleanDateString trims dateStr and collapses inner whitespace.
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// translateMonths replaces Spanish month words with English abbreviations and
// drops the "de" connectors.
func translateMonths(s string) string {
	folded := words.ReplaceAllStringFunc(textutils.Fold(s), func(w string) string {
		if w == "de" || w == "del" {
			return ""
		}
		if m, ok := spanishMonths[w]; ok {
			return m
		}
		return w
	})
	return CleanDateString(folded)
}

// ToISODate formats date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}
