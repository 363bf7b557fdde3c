package boeparser

import (
	"auction-normalizer-service/internal/core/domain"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type statusRule struct {
	status   domain.AuctionStatus
	keywords []string
}

// statusRules is evaluated top to bottom; the first row with a keyword that
// starts a word of the text decides. "inactiva" does not match "activ".
var statusRules = []statusRule{
	{domain.StatusCancelled, []string{"cancel", "suspend"}},
	{domain.StatusClosed, []string{"conclu", "finaliz", "cerrad", "closed", "finished"}},
	{domain.StatusUpcoming, []string{"proxim", "apertura", "upcoming", "opening"}},
	{domain.StatusActive, []string{"celebr", "activ", "puja", "en curso", "bidding", "active", "in session"}},
}

type auctionTypeRule struct {
	label    string
	keywords []string
}

var auctionTypeRules = []auctionTypeRule{
	{domain.AuctionTypeJudicial, []string{"judicial"}},
	{domain.AuctionTypeNotarial, []string{"notarial"}},
	{domain.AuctionTypeTaxAgency, []string{"aeat", "tribut", "hacienda"}},
	{domain.AuctionTypeSocialSecurity, []string{"tgss", "seguridad social"}},
	{domain.AuctionTypeAdministrative, []string{"administr"}},
}

// ClassifyStatus maps a raw status label to the status enum.
// Any non-blank label yields a status, StatusUnknown at worst.
func ClassifyStatus(raw string) *domain.AuctionStatus {
	folded := foldText(raw)
	if folded == "" {
		return nil
	}
	status := domain.StatusUnknown
	for _, rule := range statusRules {
		if startsAnyWord(folded, rule.keywords) {
			status = rule.status
			break
		}
	}
	return &status
}

// ClassifyAuctionType maps a raw auction type label to its canonical name,
// or returns the trimmed label when no keyword matches.
func ClassifyAuctionType(raw string) *string {
	collapsed := collapseSpace(raw)
	if collapsed == "" {
		return nil
	}
	folded := foldText(collapsed)
	for _, rule := range auctionTypeRules {
		if containsAny(folded, rule.keywords) {
			label := rule.label
			return &label
		}
	}
	return &collapsed
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// startsAnyWord reports whether some keyword occurs in s at a word start.
func startsAnyWord(s string, keywords []string) bool {
	for _, kw := range keywords {
		for from := 0; from < len(s); {
			i := strings.Index(s[from:], kw)
			if i < 0 {
				break
			}
			i += from
			if prev, _ := utf8.DecodeLastRuneInString(s[:i]); i == 0 || !isWordRune(prev) {
				return true
			}
			from = i + 1
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// foldText lower-cases s, strips diacritics, treats hyphens as spaces and
// collapses whitespace.
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(collapseSpace(strings.ReplaceAll(folded, "-", " ")))
}
