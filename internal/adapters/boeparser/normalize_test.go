package boeparser

import (
	"testing"
	"time"
)

func TestNormalizeMoney(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"1.234,56", strPtr("1234.56")},
		{"1234,56", strPtr("1234.56")},
		{"  ", nil},
		{"1.234.567,00", strPtr("1234567.00")},
		{"146.700,00 €", strPtr("146700.00")},
		{"1 234,5", strPtr("1234.5")},
		{"12.5", strPtr("12.5")},
		{"1.23.4", strPtr("1.234")},
		{"-300,00", strPtr("-300.00")},
		{"Ver condiciones", nil},
		{",", nil},
		{"-", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := NormalizeMoney(tt.in)
		if !equalStrPtr(got, tt.want) {
			t.Errorf("NormalizeMoney(%q) = %s, want %s", tt.in, show(got), show(tt.want))
		}
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"146.700,00 €", strPtr("146700.00")},
		{"-300,00", strPtr("-300.00")},
		{",5", strPtr(".5")},
		{"1.000,00 - 2.000,00 €", nil},
		{"100-200", nil},
		{"5-", nil},
		{"-", nil},
		{"Ver condiciones", nil},
	}

	for _, tt := range tests {
		if got := NormalizeAmount(tt.in); !equalStrPtr(got, tt.want) {
			t.Errorf("NormalizeAmount(%q) = %s, want %s", tt.in, show(got), show(tt.want))
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // RFC 3339 in UTC, empty for nil
	}{
		{"iso annotation wins over text", "04-04-2024 18:00:00 CET (ISO: 2024-04-04T18:00:00+02:00)", "2024-04-04T16:00:00Z"},
		{"iso before text", " (ISO: 2024-04-04T18:00:00+02:00) 05-04-2024", "2024-04-04T16:00:00Z"},
		{"zone-less iso is utc+1", "ISO: 2024-04-04T18:00:00)", "2024-04-04T17:00:00Z"},
		{"date and time", "04-04-2024 18:00:00 CET", "2024-04-04T17:00:00Z"},
		{"slash separators", "04/04/2024 09:30:00", "2024-04-04T08:30:00Z"},
		{"date only is midnight", "04/04/2024", "2024-04-03T23:00:00Z"},
		{"calendar invalid", "31-02-2024 10:00:00", ""},
		{"no date", "sin fecha disponible", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDate(tt.in)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected nil, got %s", got.Format(time.RFC3339))
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %s, got nil", tt.want)
			}
			if s := got.UTC().Format(time.RFC3339); s != tt.want {
				t.Errorf("expected %s, got %s", tt.want, s)
			}
		})
	}
}

func TestNormalizeDate_TextFallbackKeepsOffset(t *testing.T) {
	got := NormalizeDate("24-04-2024 18:00:00")
	if got == nil {
		t.Fatal("expected a date")
	}
	if s := got.Format(time.RFC3339); s != "2024-04-24T18:00:00+01:00" {
		t.Errorf("expected 2024-04-24T18:00:00+01:00, got %s", s)
	}
}

func TestNormalizePlace(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"MADRID", strPtr("Madrid")},
		{"  santa cruz de tenerife ", strPtr("Santa Cruz de Tenerife")},
		{"SAN LORENZO DE EL ESCORIAL", strPtr("San Lorenzo de el Escorial")},
		{"LAS PALMAS", strPtr("Las Palmas")},
		{"", nil},
	}
	for _, tt := range tests {
		if got := NormalizePlace(tt.in); !equalStrPtr(got, tt.want) {
			t.Errorf("NormalizePlace(%q) = %s, want %s", tt.in, show(got), show(tt.want))
		}
	}
}

func strPtr(s string) *string { return &s }

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func show(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return `"` + *s + `"`
}
