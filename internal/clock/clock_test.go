package clock_test

import (
	"testing"
	"time"

	"taskboard/backend/internal/clock"
)

func TestSystemClock(t *testing.T) {
	before := time.Now()
	got := clock.System().Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Expected system time between %v and %v, got %v", before, after, got)
	}
}

func TestMockClock(t *testing.T) {
	start := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	mock := clock.NewMock(start)

	if !mock.Now().Equal(start) {
		t.Errorf("Expected %v, got %v", start, mock.Now())
	}

	mock.Advance(2 * time.Hour)
	if want := start.Add(2 * time.Hour); !mock.Now().Equal(want) {
		t.Errorf("Expected %v after advance, got %v", want, mock.Now())
	}

	pinned := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.Set(pinned)
	if !mock.Now().Equal(pinned) {
		t.Errorf("Expected %v after set, got %v", pinned, mock.Now())
	}
}
