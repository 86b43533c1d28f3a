package walkforward

import (
	"errors"
	"testing"

	"walkforward-lab/internal/domain"
)

func TestParseMonths(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"24M", 24, false},
		{"3ME", 3, false},
		{" 12m ", 12, false},
		{"1M", 1, false},
		{"0M", 0, true},
		{"3W", 0, true},
		{"90D", 0, true},
		{"M", 0, true},
		{"1.5M", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMonths(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrNotMonthly) {
					t.Errorf("expected ErrNotMonthly, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestAddMonths_ClampsDay(t *testing.T) {
	tests := []struct {
		from   string
		months int
		want   string
	}{
		{"2012-03-31", -1, "2012-02-29"},
		{"2011-03-31", -1, "2011-02-28"},
		{"2012-01-30", -24, "2010-01-30"},
		{"2010-01-31", 1, "2010-02-28"},
		{"2010-11-15", 3, "2011-02-15"},
	}
	for _, tt := range tests {
		got := AddMonths(domain.MustDate(tt.from), tt.months)
		if !got.Equal(domain.MustDate(tt.want)) {
			t.Errorf("%s %+d months: expected %s, got %s", tt.from, tt.months, tt.want, got.Format(domain.DateLayout))
		}
	}
}

func TestBoundaries_MonthEnds(t *testing.T) {
	got := Boundaries(domain.MustDate("2010-01-01"), domain.MustDate("2010-12-15"), 3)
	want := []string{"2010-01-31", "2010-04-30", "2010-07-31", "2010-10-31", "2011-01-31"}
	if len(got) != len(want) {
		t.Fatalf("expected %d boundaries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Format(domain.DateLayout) != want[i] {
			t.Errorf("boundary %d: expected %s, got %s", i, want[i], got[i].Format(domain.DateLayout))
		}
	}
}

func TestBoundaries_StartOnMonthEnd(t *testing.T) {
	got := Boundaries(domain.MustDate("2010-01-31"), domain.MustDate("2010-02-10"), 1)
	if got[0].Format(domain.DateLayout) != "2010-01-31" {
		t.Errorf("expected first boundary on the start date, got %s", got[0].Format(domain.DateLayout))
	}
}

func TestSchedule_ContiguousNonOverlapping(t *testing.T) {
	index := domain.BusinessDays(domain.MustDate("2010-01-01"), 1000)
	periods := Schedule(index, 24, 3)
	if len(periods) == 0 {
		t.Fatal("expected periods")
	}
	for i, p := range periods {
		if p.Seq != i {
			t.Errorf("period %d: expected seq %d, got %d", i, i, p.Seq)
		}
		if !p.LookbackEnd.Equal(p.Start.AddDate(0, 0, -1)) {
			t.Errorf("period %d: lookback must end the day before start", i)
		}
		if i > 0 && !periods[i-1].End.Equal(p.Start) {
			t.Errorf("period %d: not contiguous with previous", i)
		}
		if p.Start.After(index.Last()) {
			t.Errorf("period %d starts after the last date", i)
		}
	}
}
