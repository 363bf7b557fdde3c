package boeparser

import (
	"auction-normalizer-service/internal/core/domain"
	"fmt"
	"strings"
)

// Parser turns raw BOE detail pages into normalized auctions.
type Parser struct {
	rules *RuleSet
}

func NewParser(rules *RuleSet) (*Parser, error) {
	if rules == nil {
		return nil, fmt.Errorf("boeparser: rules cannot be nil")
	}
	return &Parser{rules: rules}, nil
}

// Parse extracts and normalizes one record. SchemaVersion and ConflictKey
// are left for the caller.
func (p *Parser) Parse(raw domain.RawRecord) (*domain.NormalizedAuction, error) {
	c, err := p.Extract(raw)
	if err != nil {
		return nil, fmt.Errorf("raw record %d: %w", raw.ID, err)
	}

	rec := &domain.NormalizedAuction{
		RawID:            raw.ID,
		SourceChecksum:   raw.Checksum,
		Identifier:       DeriveIdentifier(c.Identifier, c.CanonicalURL, raw.ID, p.rules.identifier),
		URL:              c.CanonicalURL,
		StatusRaw:        trimmedOrNil(c.Status),
		IssuingAuthority: trimmedOrNil(c.IssuingAuthority),
	}

	if c.AuctionType != nil {
		rec.AuctionType = ClassifyAuctionType(*c.AuctionType)
	}
	if rec.StatusRaw != nil {
		rec.Status = ClassifyStatus(*rec.StatusRaw)
	}
	if c.StartDate != nil {
		rec.StartDate = NormalizeDate(*c.StartDate)
	}
	if c.EndDate != nil {
		rec.EndDate = NormalizeDate(*c.EndDate)
	}
	if c.StartingPrice != nil {
		rec.StartingPrice = NormalizeAmount(*c.StartingPrice)
	}
	if c.DepositAmount != nil {
		rec.DepositAmount = NormalizeAmount(*c.DepositAmount)
	}
	if c.AppraisalValue != nil {
		rec.AppraisalValue = NormalizeAmount(*c.AppraisalValue)
	}
	if c.Province != nil {
		rec.Province = NormalizePlace(*c.Province)
	}
	if c.Municipality != nil {
		rec.Municipality = NormalizePlace(*c.Municipality)
	}
	return rec, nil
}

// PriceFromText finds a starting price in plain document text.
func (p *Parser) PriceFromText(text string) *string {
	flat := strings.Join(strings.Fields(text), " ")
	if flat == "" {
		return nil
	}
	for _, re := range p.rules.priceText {
		m := re.FindStringSubmatch(flat)
		if m == nil {
			continue
		}
		if v := NormalizeAmount(m[1]); v != nil {
			return v
		}
	}
	return nil
}
