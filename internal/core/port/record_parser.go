package port

import "auction-normalizer-service/internal/core/domain"

// RecordParserPort extracts and normalizes the fields of one raw record.
type RecordParserPort interface {
	Parse(raw domain.RawRecord) (*domain.NormalizedAuction, error)
	// PriceFromText looks for a starting price in plain document text.
	PriceFromText(text string) *string
}

// ContractValidatorPort checks a normalized record against the storage contract.
type ContractValidatorPort interface {
	Validate(record *domain.NormalizedAuction) error
}
