package boeparser

import (
	"auction-normalizer-service/internal/core/domain"
	"strings"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindMoney
	kindDate
)

type fieldSpec struct {
	name string
	kind fieldKind
	set  func(c *domain.FieldCandidates, v *string)
}

// fields is the fixed evaluation order of the cascades.
var fields = []fieldSpec{
	{FieldIdentifier, kindText, func(c *domain.FieldCandidates, v *string) { c.Identifier = v }},
	{FieldAuctionType, kindText, func(c *domain.FieldCandidates, v *string) { c.AuctionType = v }},
	{FieldStatus, kindText, func(c *domain.FieldCandidates, v *string) { c.Status = v }},
	{FieldStartDate, kindDate, func(c *domain.FieldCandidates, v *string) { c.StartDate = v }},
	{FieldEndDate, kindDate, func(c *domain.FieldCandidates, v *string) { c.EndDate = v }},
	{FieldStartingPrice, kindMoney, func(c *domain.FieldCandidates, v *string) { c.StartingPrice = v }},
	{FieldDepositAmount, kindMoney, func(c *domain.FieldCandidates, v *string) { c.DepositAmount = v }},
	{FieldAppraisalValue, kindMoney, func(c *domain.FieldCandidates, v *string) { c.AppraisalValue = v }},
	{FieldIssuingAuthority, kindText, func(c *domain.FieldCandidates, v *string) { c.IssuingAuthority = v }},
	{FieldProvince, kindText, func(c *domain.FieldCandidates, v *string) { c.Province = v }},
	{FieldMunicipality, kindText, func(c *domain.FieldCandidates, v *string) { c.Municipality = v }},
}

var fieldByName = func() map[string]fieldSpec {
	m := make(map[string]fieldSpec, len(fields))
	for _, f := range fields {
		m[f.name] = f
	}
	return m
}()

// accepts reports whether a non-empty candidate is usable for the field.
// Typed fields only take candidates their normalizer can read; a money
// candidate that does not reduce to one decimal falls through to the next rule.
func (k fieldKind) accepts(v string) bool {
	switch k {
	case kindMoney:
		return NormalizeAmount(v) != nil
	case kindDate:
		return NormalizeDate(v) != nil
	}
	return true
}

// Extract runs every field cascade over the payload of raw.
func (p *Parser) Extract(raw domain.RawRecord) (domain.FieldCandidates, error) {
	var c domain.FieldCandidates
	if strings.TrimSpace(raw.Payload) == "" {
		return c, domain.ErrEmptyPayload
	}

	doc, err := parseDocument(raw.Payload)
	if err != nil {
		return c, err
	}

	for _, f := range fields {
		if v, ok := p.firstMatch(doc, f); ok {
			f.set(&c, &v)
		}
	}

	switch {
	case doc.canonical != "":
		c.CanonicalURL = &doc.canonical
	case raw.URL != nil && strings.TrimSpace(*raw.URL) != "":
		u := strings.TrimSpace(*raw.URL)
		c.CanonicalURL = &u
	}
	return c, nil
}

func (p *Parser) firstMatch(doc *document, f fieldSpec) (string, bool) {
	for _, r := range p.rules.Fields[f.name] {
		v, ok := applyRule(doc, r)
		if !ok || !f.kind.accepts(v) {
			continue
		}
		return v, true
	}
	return "", false
}

func applyRule(doc *document, r Rule) (string, bool) {
	if r.Table != "" {
		return doc.cell(r.Table)
	}

	input := doc.text
	if r.Source == sourceRaw {
		input = doc.raw
	}
	m := r.re.FindStringSubmatch(input)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	return v, v != ""
}
