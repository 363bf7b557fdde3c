package boeparser

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// sourceZone is the fixed offset BOE publishes its local times in.
var sourceZone = time.FixedZone("UTC+1", 3600)

// NormalizeMoney turns a Spanish-formatted amount into a plain decimal string.
// A dot is a thousands separator only when exactly three digits follow it;
// a comma is the decimal separator. Returns nil when no digits remain.
func NormalizeMoney(value string) *string {
	compact := strings.Join(strings.Fields(value), "")

	var b strings.Builder
	hasDigit := false
	for i := 0; i < len(compact); i++ {
		ch := compact[i]
		switch {
		case ch == '.' && isThousandsDot(compact, i):
			continue
		case ch == ',':
			ch = '.'
		case isDigit(ch):
			hasDigit = true
		}
		if isDigit(ch) || ch == '.' || ch == '-' {
			b.WriteByte(ch)
		}
	}
	if !hasDigit {
		return nil
	}

	cleaned := b.String()
	if parts := strings.Split(cleaned, "."); len(parts) > 2 {
		cleaned = parts[0] + "." + strings.Join(parts[1:], "")
	}
	return &cleaned
}

// decimalAmount is the amount shape the record contract accepts.
var decimalAmount = regexp.MustCompile(`^-?([0-9]+\.?[0-9]*|\.[0-9]+)$`)

// NormalizeAmount is NormalizeMoney restricted to results that read as a
// single decimal number. Ranges and stray signs come back nil.
func NormalizeAmount(value string) *string {
	v := NormalizeMoney(value)
	if v == nil || !decimalAmount.MatchString(*v) {
		return nil
	}
	return v
}

func isThousandsDot(s string, i int) bool {
	for k := 1; k <= 3; k++ {
		if i+k >= len(s) || !isDigit(s[i+k]) {
			return false
		}
	}
	return i+4 == len(s) || !isDigit(s[i+4])
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

var (
	isoAnnotation = regexp.MustCompile(`(?i)^[\s\S]{0,160}?ISO:\s*([^)]+)`)
	dateTimeText  = regexp.MustCompile(`^[\s\S]{0,160}?(\d{2})[-/](\d{2})[-/](\d{4})\s+(\d{2}:\d{2}:\d{2})`)
	dateText      = regexp.MustCompile(`^[\s\S]{0,160}?(\d{2})[-/](\d{2})[-/](\d{4})`)
)

// NormalizeDate reads a date out of the text that follows a date label.
// An "(ISO: ...)" annotation wins over dd-mm-yyyy[ hh:mm:ss] text; textual
// dates are read in UTC+1 and a bare date means midnight. Returns nil when
// nothing valid is found.
func NormalizeDate(text string) *time.Time {
	if m := isoAnnotation.FindStringSubmatch(text); m != nil {
		if t, ok := parseISO(strings.TrimSpace(m[1])); ok {
			return &t
		}
	}

	if m := dateTimeText.FindStringSubmatch(text); m != nil {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", m[3]+"-"+m[2]+"-"+m[1]+" "+m[4], sourceZone)
		if err != nil {
			return nil
		}
		return &t
	}

	if m := dateText.FindStringSubmatch(text); m != nil {
		t, err := time.ParseInLocation("2006-01-02", m[3]+"-"+m[2]+"-"+m[1], sourceZone)
		if err != nil {
			return nil
		}
		return &t
	}
	return nil
}

func parseISO(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, sourceZone); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var placeParticles = map[string]bool{
	"de": true, "del": true, "la": true, "las": true, "los": true, "y": true, "el": true,
}

// NormalizePlace title-cases a province or municipality name, keeping
// Spanish particles in lower case after the first word.
func NormalizePlace(raw string) *string {
	collapsed := collapseSpace(raw)
	if collapsed == "" {
		return nil
	}

	words := strings.Split(cases.Title(language.Spanish).String(collapsed), " ")
	for i := 1; i < len(words); i++ {
		if lower := strings.ToLower(words[i]); placeParticles[lower] {
			words[i] = lower
		}
	}
	out := strings.Join(words, " ")
	return &out
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := collapseSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
