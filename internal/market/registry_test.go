package market

import (
	"testing"

	"github.com/quotegather/yahoo-data/internal/yahoo"
)

func strPtr(s string) *string { return &s }

func TestRegistry_SeedsConfiguredSymbols(t *testing.T) {
	r := NewRegistry([]string{"MSFT", "AAPL"}, nil)

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	symbols := r.Symbols()
	if symbols[0] != "AAPL" || symbols[1] != "MSFT" {
		t.Errorf("Symbols() = %v, want sorted [AAPL MSFT]", symbols)
	}

	inst, ok := r.Get("AAPL")
	if !ok {
		t.Fatal("expected AAPL to be tracked")
	}
	if inst.Enriched() {
		t.Error("expected AAPL to start unenriched")
	}
}

func TestRegistry_Enrich(t *testing.T) {
	r := NewRegistry([]string{"AAPL"}, nil)

	meta := &yahoo.Metadata{
		Currency:             strPtr("USD"),
		Symbol:               "AAPL",
		ExchangeName:         "NMS",
		InstrumentType:       "EQUITY",
		ExchangeTimezoneName: "America/New_York",
	}

	if !r.Enrich("AAPL", meta) {
		t.Error("first Enrich should report true")
	}

	inst, _ := r.Get("AAPL")
	if !inst.Enriched() {
		t.Error("expected instrument to be enriched")
	}
	if inst.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", inst.Currency)
	}
	if inst.Exchange != "NMS" {
		t.Errorf("Exchange = %q, want NMS", inst.Exchange)
	}
	if inst.InstrumentType != "EQUITY" {
		t.Errorf("InstrumentType = %q, want EQUITY", inst.InstrumentType)
	}
	if inst.Timezone != "America/New_York" {
		t.Errorf("Timezone = %q, want America/New_York", inst.Timezone)
	}

	// Second enrichment refreshes but does not report
	if r.Enrich("AAPL", meta) {
		t.Error("second Enrich should report false")
	}
}

func TestRegistry_EnrichUnknownSymbol(t *testing.T) {
	r := NewRegistry([]string{"AAPL"}, nil)

	meta := &yahoo.Metadata{Symbol: "TSLA", ExchangeName: "NMS"}
	if r.Enrich("TSLA", meta) {
		t.Error("enriching an untracked symbol should report false")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_EnrichNilMetadata(t *testing.T) {
	r := NewRegistry([]string{"AAPL"}, nil)

	if r.Enrich("AAPL", nil) {
		t.Error("nil metadata should report false")
	}
	inst, _ := r.Get("AAPL")
	if inst.Enriched() {
		t.Error("nil metadata should not enrich")
	}
}

func TestRegistry_Instruments(t *testing.T) {
	r := NewRegistry([]string{"MSFT", "AAPL", "TSLA"}, nil)

	instruments := r.Instruments()
	if len(instruments) != 3 {
		t.Fatalf("Instruments() length = %d, want 3", len(instruments))
	}
	for i, want := range []string{"AAPL", "MSFT", "TSLA"} {
		if instruments[i].Symbol != want {
			t.Errorf("instruments[%d].Symbol = %q, want %q", i, instruments[i].Symbol, want)
		}
	}
}
