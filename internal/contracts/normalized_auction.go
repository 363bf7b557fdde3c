package contracts

import (
	"auction-normalizer-service/internal/core/domain"
	"encoding/json"
	"fmt"
	"time"
)

const (
	NormalizedAuctionRecord  = "NormalizedAuctionRecord"
	NormalizedAuctionVersion = "1.0.0"
)

// NormalizedAuctionDTO is the JSON shape of a record about to be stored.
type NormalizedAuctionDTO struct {
	ConflictKey      string  `json:"conflict_key"`
	RawID            int64   `json:"raw_id"`
	SourceChecksum   string  `json:"source_checksum"`
	Identifier       string  `json:"identifier"`
	URL              *string `json:"url"`
	AuctionType      *string `json:"auction_type"`
	StatusRaw        *string `json:"auction_status_raw"`
	Status           *string `json:"auction_status"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	StartingPrice    *string `json:"starting_price"`
	DepositAmount    *string `json:"deposit_amount"`
	AppraisalValue   *string `json:"appraisal_value"`
	IssuingAuthority *string `json:"issuing_authority"`
	Province         *string `json:"province"`
	Municipality     *string `json:"municipality"`
	SchemaVersion    int     `json:"schema_version"`
}

func ToNormalizedAuctionDTO(rec *domain.NormalizedAuction) NormalizedAuctionDTO {
	dto := NormalizedAuctionDTO{
		ConflictKey:      rec.ConflictKey,
		RawID:            rec.RawID,
		SourceChecksum:   rec.SourceChecksum,
		Identifier:       rec.Identifier,
		URL:              rec.URL,
		AuctionType:      rec.AuctionType,
		StatusRaw:        rec.StatusRaw,
		StartDate:        formatTime(rec.StartDate),
		EndDate:          formatTime(rec.EndDate),
		StartingPrice:    rec.StartingPrice,
		DepositAmount:    rec.DepositAmount,
		AppraisalValue:   rec.AppraisalValue,
		IssuingAuthority: rec.IssuingAuthority,
		Province:         rec.Province,
		Municipality:     rec.Municipality,
		SchemaVersion:    rec.SchemaVersion,
	}
	if rec.Status != nil {
		s := string(*rec.Status)
		dto.Status = &s
	}
	return dto
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// RecordValidator checks normalized records against the embedded record schema.
type RecordValidator struct{}

// NewRecordValidator compiles the embedded schemas and fails if they are broken.
func NewRecordValidator() (*RecordValidator, error) {
	if _, err := load(); err != nil {
		return nil, err
	}
	return &RecordValidator{}, nil
}

func (v *RecordValidator) Validate(rec *domain.NormalizedAuction) error {
	body, err := json.Marshal(ToNormalizedAuctionDTO(rec))
	if err != nil {
		return fmt.Errorf("failed to encode normalized record: %w", err)
	}
	if err := Validate(NormalizedAuctionRecord, NormalizedAuctionVersion, body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrContractViolation, err)
	}
	return nil
}
