// Package loader reads daily price histories.
package loader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"walkforward-lab/internal/domain"
)

var (
	ErrNoRows        = errors.New("no price rows")
	ErrMissingColumn = errors.New("price column not found")
	ErrBadRow        = errors.New("malformed price row")
)

// Options selects columns in a headed file. Files without a header are read
// as date,price.
type Options struct {
	Symbol      string // label for the series
	PriceColumn string // header name of the price column; empty picks the first non-date column
}

var dateLayouts = []string{
	domain.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// LoadCSV reads a price file from disk.
func LoadCSV(path string, opts Options) (*domain.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()

	ps, err := Read(bufio.NewReaderSize(f, 1<<20), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}

// Read parses CSV rows of date and price. Blank or "NaN" prices become
// undefined observations. Dates must be strictly increasing.
func Read(r io.Reader, opts Options) (*domain.PriceSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	dateCol, priceCol := 0, 1
	var points []domain.PricePoint
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line++

		if line == 1 {
			if _, ok := parseDate(rec[0]); !ok {
				if dateCol, priceCol, err = columns(rec, opts.PriceColumn); err != nil {
					return nil, err
				}
				continue
			}
		}
		if len(rec) <= dateCol || len(rec) <= priceCol {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrBadRow, line, len(rec))
		}

		d, ok := parseDate(rec[dateCol])
		if !ok {
			return nil, fmt.Errorf("%w: line %d: bad date %q", ErrBadRow, line, rec[dateCol])
		}
		price, err := parsePrice(rec[priceCol])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadRow, line, err)
		}
		points = append(points, domain.PricePoint{Date: d, Price: price})
	}

	if len(points) == 0 {
		return nil, ErrNoRows
	}
	return domain.NewPriceSeries(opts.Symbol, points)
}

// columns resolves column positions from a header row.
func columns(header []string, priceName string) (int, int, error) {
	dateCol, priceCol := -1, -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case dateCol < 0 && (name == "date" || name == "time" || name == "timestamp"):
			dateCol = i
		case priceName != "" && strings.EqualFold(strings.TrimSpace(h), priceName):
			priceCol = i
		}
	}
	if dateCol < 0 {
		dateCol = 0
	}
	if priceCol < 0 && priceName == "" {
		for i := range header {
			if i != dateCol {
				priceCol = i
				break
			}
		}
	}
	if priceCol < 0 {
		return 0, 0, fmt.Errorf("%w: %q in %v", ErrMissingColumn, priceName, header)
	}
	return dateCol, priceCol, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Truncate(t), true
		}
	}
	return time.Time{}, false
}

func parsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad price %q", s)
	}
	if v <= 0 || math.IsInf(v, 0) {
		return 0, fmt.Errorf("price %v must be positive", v)
	}
	return v, nil
}

// WriteCSV writes prices as a headed date,price file.
func WriteCSV(w io.Writer, ps *domain.PriceSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "price"}); err != nil {
		return err
	}
	for i, d := range ps.Index {
		price := ""
		if domain.IsDefined(ps.Prices[i]) {
			price = strconv.FormatFloat(ps.Prices[i], 'f', -1, 64)
		}
		if err := cw.Write([]string{d.Format(domain.DateLayout), price}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
