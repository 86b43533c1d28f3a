package loader

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"walkforward-lab/internal/domain"
)

func TestRead_Headerless(t *testing.T) {
	ps, err := Read(strings.NewReader("2020-01-02,100\n2020-01-03,101.5\n"), Options{Symbol: "SPX"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ps.Len() != 2 || ps.Prices[1] != 101.5 || ps.Symbol != "SPX" {
		t.Errorf("unexpected series %+v", ps)
	}
	if !ps.Index[0].Equal(domain.MustDate("2020-01-02")) {
		t.Errorf("Index[0] = %v", ps.Index[0])
	}
}

func TestRead_HeaderAndColumns(t *testing.T) {
	data := "Date,Open,CO1 Comdty\n2020-01-02,1,60.5\n2020-01-03,1,\n2020-01-06,1,61\n"

	ps, err := Read(strings.NewReader(data), Options{PriceColumn: "co1 comdty"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ps.Len() != 3 {
		t.Fatalf("Len = %d, want 3", ps.Len())
	}
	if ps.Prices[0] != 60.5 || !math.IsNaN(ps.Prices[1]) || ps.Prices[2] != 61 {
		t.Errorf("Prices = %v", ps.Prices)
	}

	// Without a column name, the first non-date column is used.
	ps, err = Read(strings.NewReader(data), Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ps.Prices[0] != 1 {
		t.Errorf("Prices[0] = %v, want 1", ps.Prices[0])
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", ErrNoRows},
		{"header only", "date,price\n", ErrNoRows},
		{"missing column", "date,close\n2020-01-02,1\n", ErrMissingColumn},
		{"bad date", "2020-01-02,1\nyesterday,2\n", ErrBadRow},
		{"bad price", "2020-01-02,abc\n", ErrBadRow},
		{"negative price", "2020-01-02,-1\n", ErrBadRow},
		{"short row", "date,price\n2020-01-02\n", ErrBadRow},
		{"unordered", "2020-01-03,1\n2020-01-02,2\n", domain.ErrUnorderedIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{}
			if tt.name == "missing column" {
				opts.PriceColumn = "price"
			}
			_, err := Read(strings.NewReader(tt.data), opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriteAndLoadCSV(t *testing.T) {
	ps := &domain.PriceSeries{
		Symbol: "X",
		Index:  domain.BusinessDays(domain.MustDate("2021-03-01"), 3),
		Prices: domain.Series{10, math.NaN(), 10.25},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ps); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadCSV(path, Options{Symbol: "X"})
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if got.Len() != 3 || got.Prices[2] != 10.25 || !math.IsNaN(got.Prices[1]) {
		t.Errorf("round trip mismatch: %v", got.Prices)
	}

	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}
