package currency

import (
	"strings"
	"testing"
)

func TestFormatSymbolPlacement(t *testing.T) {
	f := NewFormatter()

	tests := []struct {
		name       string
		amount     float64
		code       string
		locale     string
		wantPrefix string
		wantSuffix string
		wantDigits string
	}{
		{
			name:       "US dollars lead with the symbol",
			amount:     15.99,
			code:       "USD",
			locale:     "en-US",
			wantPrefix: "$",
			wantDigits: "15.99",
		},
		{
			name:       "Swedish kronor trail with kr",
			amount:     199,
			code:       "SEK",
			locale:     "sv-SE",
			wantSuffix: " kr",
			wantDigits: "199",
		},
		{
			name:       "euros trail with the symbol",
			amount:     1234.56,
			code:       "EUR",
			locale:     "de-DE",
			wantSuffix: " €",
			wantDigits: "1.234,56",
		},
		{
			name:       "zero keeps two fraction digits",
			amount:     0,
			code:       "USD",
			locale:     "en-US",
			wantPrefix: "$",
			wantDigits: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Format(tt.amount, tt.code, tt.locale)
			if tt.wantPrefix != "" && !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("expected prefix %q, got %q", tt.wantPrefix, got)
			}
			if tt.wantSuffix != "" && !strings.HasSuffix(got, tt.wantSuffix) {
				t.Errorf("expected suffix %q, got %q", tt.wantSuffix, got)
			}
			if tt.wantDigits != "" && !strings.Contains(got, tt.wantDigits) {
				t.Errorf("expected digits %q in %q", tt.wantDigits, got)
			}
		})
	}
}

func TestFormatUnknownCurrencyFallsBackToCode(t *testing.T) {
	f := NewFormatter()

	got := f.Format(10, "ZZZ", "en-US")
	if !strings.HasSuffix(got, " ZZZ") {
		t.Errorf("expected the raw code as a suffix, got %q", got)
	}
	if !strings.Contains(got, "10.00") {
		t.Errorf("expected a formatted amount, got %q", got)
	}
}

func TestFormatEmptyInputsUseDefaults(t *testing.T) {
	f := NewFormatter()

	got := f.Format(5, "", "")
	if !strings.HasPrefix(got, "$") {
		t.Errorf("expected an empty code to fall back to USD, got %q", got)
	}

	got = f.Format(5, "EUR", "")
	if !strings.HasSuffix(got, " €") {
		t.Errorf("expected the home locale to render the euro symbol, got %q", got)
	}
}

func TestFormatCacheIsStable(t *testing.T) {
	f := NewFormatter()

	first := f.Format(42.5, "GBP", "en-GB")
	second := f.Format(42.5, "GBP", "en-GB")
	if first != second {
		t.Errorf("expected identical output from the cached entry, got %q then %q", first, second)
	}
	if !strings.HasPrefix(first, "£") {
		t.Errorf("expected a pound prefix, got %q", first)
	}
}
