package boeparser

import (
	"auction-normalizer-service/internal/core/domain"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		in   string
		want domain.AuctionStatus
	}{
		{"Cancelada", domain.StatusCancelled},
		{"Suspendida", domain.StatusCancelled},
		{"Activa, posteriormente cancelada", domain.StatusCancelled},
		{"cancelled while active", domain.StatusCancelled},
		{"active, then cancelled", domain.StatusCancelled},
		{"Concluida en Portal de Subastas", domain.StatusClosed},
		{"Ha concluido", domain.StatusClosed},
		{"Pendiente de finalización", domain.StatusClosed},
		{"Próxima apertura", domain.StatusUpcoming},
		{"Celebrándose", domain.StatusActive},
		{"En curso - puja abierta", domain.StatusActive},
		{"In-session", domain.StatusActive},
		{"in session", domain.StatusActive},
		{"Subasta activa", domain.StatusActive},
		{"Inactiva", domain.StatusUnknown},
		{"Desconocido", domain.StatusUnknown},
	}

	for _, tt := range tests {
		got := ClassifyStatus(tt.in)
		if got == nil {
			t.Errorf("ClassifyStatus(%q) = nil, want %s", tt.in, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("ClassifyStatus(%q) = %s, want %s", tt.in, *got, tt.want)
		}
	}
}

func TestClassifyStatus_BlankIsNil(t *testing.T) {
	if got := ClassifyStatus("   "); got != nil {
		t.Errorf("expected nil for blank status, got %s", *got)
	}
}

func TestClassifyStatus_TablePrecedence(t *testing.T) {
	// Each row must outrank every row below it.
	for i, higher := range statusRules {
		for _, lower := range statusRules[i+1:] {
			text := lower.keywords[0] + " " + higher.keywords[0]
			got := ClassifyStatus(text)
			if got == nil || *got != higher.status {
				t.Errorf("ClassifyStatus(%q) = %v, want %s", text, got, higher.status)
			}
		}
	}
}

func TestClassifyAuctionType(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"JUDICIAL EN VIA DE APREMIO", strPtr(domain.AuctionTypeJudicial)},
		{"Notarial", strPtr(domain.AuctionTypeNotarial)},
		{"AEAT", strPtr(domain.AuctionTypeTaxAgency)},
		{"Agencia Tributaria", strPtr(domain.AuctionTypeTaxAgency)},
		{"Ministerio de Hacienda", strPtr(domain.AuctionTypeTaxAgency)},
		{"TGSS", strPtr(domain.AuctionTypeSocialSecurity)},
		{"Tesorería General de la Seguridad Social", strPtr(domain.AuctionTypeSocialSecurity)},
		{"Administrativa", strPtr(domain.AuctionTypeAdministrative)},
		{"Judicial y notarial", strPtr(domain.AuctionTypeJudicial)},
		{"  Voluntaria  ", strPtr("Voluntaria")},
		{"", nil},
	}
	for _, tt := range tests {
		if got := ClassifyAuctionType(tt.in); !equalStrPtr(got, tt.want) {
			t.Errorf("ClassifyAuctionType(%q) = %s, want %s", tt.in, show(got), show(tt.want))
		}
	}
}
