package boeparser

import (
	"auction-normalizer-service/internal/core/domain"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	rules, err := DefaultRules()
	if err != nil {
		t.Fatalf("failed to load default rules: %v", err)
	}
	p, err := NewParser(rules)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	return p
}

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

func TestParse_JudicialDetailPage(t *testing.T) {
	p := newTestParser(t)
	raw := domain.RawRecord{
		ID:        7,
		SourceTag: "BOE_DETAIL",
		Payload:   loadFixture(t, "detail_judicial.html"),
		Checksum:  "abc123",
	}

	rec, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Identifier != "SUB-JA-2024-215487" {
		t.Errorf("expected identifier SUB-JA-2024-215487, got %q", rec.Identifier)
	}
	if rec.RawID != 7 || rec.SourceChecksum != "abc123" {
		t.Errorf("expected raw id 7 and checksum abc123, got %d and %q", rec.RawID, rec.SourceChecksum)
	}

	checks := []struct {
		field string
		got   *string
		want  string
	}{
		{"url", rec.URL, "https://subastas.boe.es/detalleSubasta.php?idSub=SUB-JA-2024-215487"},
		{"auction_type", rec.AuctionType, domain.AuctionTypeJudicial},
		{"status_raw", rec.StatusRaw, "Celebrándose"},
		{"starting_price", rec.StartingPrice, "146700.00"},
		{"appraisal_value", rec.AppraisalValue, "146700.00"},
		{"deposit_amount", rec.DepositAmount, "7335.00"},
		{"issuing_authority", rec.IssuingAuthority, "UNIDAD SUBASTAS JUDICIALES MADRID"},
		{"province", rec.Province, "Madrid"},
		{"municipality", rec.Municipality, "San Lorenzo de el Escorial"},
	}
	for _, c := range checks {
		if c.got == nil {
			t.Errorf("%s: expected %q, got nil", c.field, c.want)
			continue
		}
		if *c.got != c.want {
			t.Errorf("%s: expected %q, got %q", c.field, c.want, *c.got)
		}
	}

	if rec.Status == nil || *rec.Status != domain.StatusActive {
		t.Errorf("expected status ACTIVE, got %v", rec.Status)
	}

	wantStart := time.Date(2024, 4, 4, 16, 0, 0, 0, time.UTC)
	if rec.StartDate == nil || !rec.StartDate.Equal(wantStart) {
		t.Errorf("expected start %s, got %v", wantStart, rec.StartDate)
	}
	wantEnd := time.Date(2024, 4, 24, 16, 0, 0, 0, time.UTC)
	if rec.EndDate == nil || !rec.EndDate.Equal(wantEnd) {
		t.Errorf("expected end %s, got %v", wantEnd, rec.EndDate)
	}
}

func TestParse_EmptyPayload(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse(domain.RawRecord{ID: 1, Payload: "  \n "})
	if !errors.Is(err, domain.ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
}

func TestExtract_StartingPriceCascadeOrder(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "first table label wins",
			payload: `<table><tr><th>Importe Base</th><td>1.000,00</td></tr><tr><th>Valor subasta</th><td>3.000,00</td></tr></table>`,
			want:    "3.000,00",
		},
		{
			name:    "table beats free text",
			payload: `<p>Valor subasta: 2.000,00</p><table><tr><th>Importe Base</th><td>1.000,00</td></tr></table>`,
			want:    "1.000,00",
		},
		{
			name:    "unreadable amount falls through",
			payload: `<table><tr><th>Valor subasta</th><td>Ver condiciones</td></tr><tr><th>Precio de salida</th><td>5.000,00 €</td></tr></table>`,
			want:    "5.000,00 €",
		},
		{
			name:    "free text when no table",
			payload: `<p>El valor subasta: 2.000,00 euros</p>`,
			want:    "2.000,00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := p.Extract(domain.RawRecord{ID: 1, Payload: tt.payload})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.StartingPrice == nil || *c.StartingPrice != tt.want {
				t.Errorf("expected %q, got %s", tt.want, show(c.StartingPrice))
			}
		})
	}
}

func TestParse_AmountRangeLeavesFieldEmpty(t *testing.T) {
	p := newTestParser(t)
	payload := `<p>SUB-JA-2024-1001</p><table>
		<tr><th>Valor subasta</th><td>146.700,00 €</td></tr>
		<tr><th>Depósito</th><td>1.000,00 - 2.000,00 €</td></tr>
		<tr><th>Tasación</th><td>150.000,00 €</td></tr>
	</table>`

	rec, err := p.Parse(domain.RawRecord{ID: 1, Payload: payload})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.DepositAmount != nil {
		t.Errorf("expected no deposit amount, got %s", show(rec.DepositAmount))
	}
	if !equalStrPtr(rec.StartingPrice, strPtr("146700.00")) {
		t.Errorf("expected starting price 146700.00, got %s", show(rec.StartingPrice))
	}
	if !equalStrPtr(rec.AppraisalValue, strPtr("150000.00")) {
		t.Errorf("expected appraisal value 150000.00, got %s", show(rec.AppraisalValue))
	}
}

func TestExtract_IssuingAuthorityCascadeOrder(t *testing.T) {
	p := newTestParser(t)
	payload := `<table>
		<tr><th>Organismo</th><td>Ayuntamiento</td></tr>
		<tr><th>Autoridad gestora</th><td>Juzgado nº 3</td></tr>
	</table>`

	c, err := p.Extract(domain.RawRecord{ID: 1, Payload: payload})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.IssuingAuthority == nil || *c.IssuingAuthority != "Juzgado nº 3" {
		t.Errorf("expected Juzgado nº 3, got %s", show(c.IssuingAuthority))
	}
}

func TestExtract_StatusTableBeatsKeywordScan(t *testing.T) {
	p := newTestParser(t)
	payload := `<p>Esta subasta ha concluido</p><table><tr><th>Estado</th><td>Suspendida</td></tr></table>`

	c, err := p.Extract(domain.RawRecord{ID: 1, Payload: payload})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status == nil || *c.Status != "Suspendida" {
		t.Errorf("expected Suspendida, got %s", show(c.Status))
	}
}

func TestExtract_DateFromFreeText(t *testing.T) {
	p := newTestParser(t)
	payload := "Fecha de inicio: 04-04-2024 18:00:00 CET\nFecha de conclusión: 24-04-2024"

	c, err := p.Extract(domain.RawRecord{ID: 1, Payload: payload})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.StartDate == nil || !strings.HasPrefix(strings.TrimSpace(*c.StartDate), ": 04-04-2024 18:00:00") {
		t.Errorf("unexpected start window %s", show(c.StartDate))
	}
	if c.EndDate == nil || !strings.HasPrefix(strings.TrimSpace(*c.EndDate), ": 24-04-2024") {
		t.Errorf("unexpected end window %s", show(c.EndDate))
	}
}

func TestExtract_CanonicalURLFallsBackToRawURL(t *testing.T) {
	p := newTestParser(t)
	origin := " https://subastas.boe.es/detalleSubasta.php?idSub=SUB-AT-2024-1 "

	c, err := p.Extract(domain.RawRecord{ID: 1, Payload: "<p>sin enlace</p>", URL: &origin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CanonicalURL == nil || *c.CanonicalURL != strings.TrimSpace(origin) {
		t.Errorf("expected origin URL, got %s", show(c.CanonicalURL))
	}

	c, err = p.Extract(domain.RawRecord{ID: 1, Payload: "<p>sin enlace</p>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CanonicalURL != nil {
		t.Errorf("expected nil URL, got %q", *c.CanonicalURL)
	}
}

func TestParse_IdentifierPrecedence(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name    string
		payload string
		url     string
		want    string
	}{
		{"inline token beats query", "<p>Referencia SUB-AB-2023-1</p>", "https://subastas.boe.es/detalleSubasta.php?idSub=SUB-ZZ-9", "SUB-AB-2023-1"},
		{"path segment", "<p>sin referencia</p>", "https://example.org/subastas/SUB-XY-1/detalle?id=77", "SUB-XY-1"},
		{"id before idSub", "<p>sin referencia</p>", "https://example.org/detalle?idSub=B-2&id=A-1", "A-1"},
		{"idSub", "<p>sin referencia</p>", "https://subastas.boe.es/detalleSubasta.php?idSub=SUB-ZZ-9", "SUB-ZZ-9"},
		{"synthetic", "<p>sin referencia</p>", "", "RAW-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := domain.RawRecord{ID: 42, Payload: tt.payload}
			if tt.url != "" {
				raw.URL = &tt.url
			}
			rec, err := p.Parse(raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Identifier != tt.want {
				t.Errorf("expected %q, got %q", tt.want, rec.Identifier)
			}
		})
	}
}

func TestPriceFromText(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		in   string
		want *string
	}{
		{"CONDICIONES\nIMPORTE DE SUBASTA: 12.500,50 euros", strPtr("12500.50")},
		{"Importe base 3.000 y valor subasta 4.000", strPtr("4000")},
		{"Tipo de subasta: 80.000,00", strPtr("80000.00")},
		{"Importe base: 1.000,00 - 2.000,00; tipo de subasta: 4.000", strPtr("4000")},
		{"sin importes", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if got := p.PriceFromText(tt.in); !equalStrPtr(got, tt.want) {
			t.Errorf("PriceFromText(%q) = %s, want %s", tt.in, show(got), show(tt.want))
		}
	}
}
