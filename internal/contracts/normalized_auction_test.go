package contracts

import (
	"auction-normalizer-service/internal/core/domain"
	"errors"
	"testing"
	"time"
)

func validAuction() *domain.NormalizedAuction {
	status := domain.StatusClosed
	start := time.Date(2024, 4, 4, 18, 0, 0, 0, time.FixedZone("UTC+1", 3600))
	price := "146700.00"
	url := "https://subastas.boe.es/detalleSubasta.php?idSub=SUB-JA-2024-215487"
	return &domain.NormalizedAuction{
		ConflictKey:    "ident:SUB-JA-2024-215487",
		RawID:          7,
		SourceChecksum: "abc",
		Identifier:     "SUB-JA-2024-215487",
		URL:            &url,
		Status:         &status,
		StartDate:      &start,
		StartingPrice:  &price,
		SchemaVersion:  1,
	}
}

func TestRecordValidator_Accepts(t *testing.T) {
	v, err := NewRecordValidator()
	if err != nil {
		t.Fatalf("failed to load schemas: %v", err)
	}
	if err := v.Validate(validAuction()); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}
}

func TestRecordValidator_Rejects(t *testing.T) {
	v, err := NewRecordValidator()
	if err != nil {
		t.Fatalf("failed to load schemas: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*domain.NormalizedAuction)
	}{
		{"malformed amount", func(r *domain.NormalizedAuction) { s := "1-2"; r.DepositAmount = &s }},
		{"empty conflict key", func(r *domain.NormalizedAuction) { r.ConflictKey = "checksum:" }},
		{"unknown status", func(r *domain.NormalizedAuction) { s := domain.AuctionStatus("PAUSED"); r.Status = &s }},
		{"missing schema version", func(r *domain.NormalizedAuction) { r.SchemaVersion = 0 }},
		{"empty identifier", func(r *domain.NormalizedAuction) { r.Identifier = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validAuction()
			tt.mutate(rec)
			err := v.Validate(rec)
			if !errors.Is(err, domain.ErrContractViolation) {
				t.Fatalf("expected ErrContractViolation, got %v", err)
			}
		})
	}
}

func TestKeyFromPath(t *testing.T) {
	tests := map[string]string{
		"events/normalization-run-report/v1.json": "NormalizationRunReportEvent/1.0.0",
		"records/normalized-auction/v2.json":      "NormalizedAuctionRecord/2.0.0",
	}
	for in, want := range tests {
		if got := keyFromPath(in); got != want {
			t.Errorf("keyFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}
