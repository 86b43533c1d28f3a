package lookup

import (
	"testing"

	"walkforward-lab/internal/domain"
)

func testIndex() domain.Index {
	return domain.Index{
		domain.MustDate("2020-01-02"),
		domain.MustDate("2020-01-03"),
		domain.MustDate("2020-01-06"),
		domain.MustDate("2020-01-07"),
	}
}

func TestClosed_IncludesBothEnds(t *testing.T) {
	lo, hi := Closed(testIndex(), domain.MustDate("2020-01-03"), domain.MustDate("2020-01-06"))
	if lo != 1 || hi != 3 {
		t.Errorf("expected [1,3), got [%d,%d)", lo, hi)
	}
}

func TestClosed_BetweenDates(t *testing.T) {
	// weekend bounds fall between observations
	lo, hi := Closed(testIndex(), domain.MustDate("2020-01-04"), domain.MustDate("2020-01-05"))
	if lo != hi {
		t.Errorf("expected empty range, got [%d,%d)", lo, hi)
	}
}

func TestClosed_Inverted(t *testing.T) {
	lo, hi := Closed(testIndex(), domain.MustDate("2020-01-07"), domain.MustDate("2020-01-02"))
	if lo != hi {
		t.Errorf("expected empty range, got [%d,%d)", lo, hi)
	}
}

func TestHalfOpen_ExcludesEnd(t *testing.T) {
	lo, hi := HalfOpen(testIndex(), domain.MustDate("2020-01-02"), domain.MustDate("2020-01-06"))
	if lo != 0 || hi != 2 {
		t.Errorf("expected [0,2), got [%d,%d)", lo, hi)
	}
}

func TestAtOrBefore(t *testing.T) {
	ix := testIndex()
	if got := AtOrBefore(ix, domain.MustDate("2020-01-05")); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := AtOrBefore(ix, domain.MustDate("2019-12-31")); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}
