package utils

import (
	"testing"
	"time"
)

func nairobiDate(t *testing.T, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		t.Fatalf("load Africa/Nairobi: %v", err)
	}
	return time.Date(y, m, d, hh, mm, 0, 0, loc)
}

func TestInBidBlackout(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		// 2024-01-04 is a Thursday.
		{"thursday before window", nairobiDate(t, 2024, time.January, 4, 15, 59), false},
		{"thursday window opens", nairobiDate(t, 2024, time.January, 4, 16, 0), true},
		{"thursday evening", nairobiDate(t, 2024, time.January, 4, 23, 30), true},
		{"friday early morning", nairobiDate(t, 2024, time.January, 5, 7, 59), true},
		{"friday window closes", nairobiDate(t, 2024, time.January, 5, 8, 0), false},
		{"saturday", nairobiDate(t, 2024, time.January, 6, 16, 30), false},
		{"monday", nairobiDate(t, 2024, time.January, 1, 16, 30), false},
	}
	for _, c := range cases {
		if got := InBidBlackout(c.at); got != c.want {
			t.Errorf("%s: InBidBlackout(%v) = %v, want %v", c.name, c.at, got, c.want)
		}
	}
}

func TestInBidBlackout_ForeignZone(t *testing.T) {
	// 13:30 UTC on a Thursday is 16:30 in Nairobi: inside the window even
	// though the caller's clock says otherwise.
	at := time.Date(2024, time.January, 4, 13, 30, 0, 0, time.UTC)
	if !InBidBlackout(at) {
		t.Fatalf("expected UTC timestamp to be evaluated on the Nairobi clock")
	}
}

func TestSubmissionDeadline_SameDay(t *testing.T) {
	bid := nairobiDate(t, 2024, time.January, 4, 8, 0)
	want := nairobiDate(t, 2024, time.January, 4, 16, 0)
	if got := SubmissionDeadline(bid); !got.Equal(want) {
		t.Fatalf("deadline for 08:00 bid = %v, want %v", got, want)
	}

	// 16:59 is still before the 17:00 boundary: same-day deadline, already past.
	bid = nairobiDate(t, 2024, time.January, 4, 16, 59)
	if got := SubmissionDeadline(bid); !got.Equal(want) {
		t.Fatalf("deadline for 16:59 bid = %v, want %v", got, want)
	}
}

func TestSubmissionDeadline_NextDay(t *testing.T) {
	bid := nairobiDate(t, 2024, time.January, 4, 17, 30)
	want := nairobiDate(t, 2024, time.January, 5, 16, 0)
	if got := SubmissionDeadline(bid); !got.Equal(want) {
		t.Fatalf("deadline for 17:30 bid = %v, want %v", got, want)
	}

	// Exactly 17:00 already rolls over.
	bid = nairobiDate(t, 2024, time.January, 4, 17, 0)
	if got := SubmissionDeadline(bid); !got.Equal(want) {
		t.Fatalf("deadline for 17:00 bid = %v, want %v", got, want)
	}
}

func TestSubmissionWindowOpen(t *testing.T) {
	bid := nairobiDate(t, 2024, time.January, 4, 8, 0)
	if !SubmissionWindowOpen(bid, nairobiDate(t, 2024, time.January, 4, 15, 59)) {
		t.Fatalf("window should be open before 16:00")
	}
	if SubmissionWindowOpen(bid, nairobiDate(t, 2024, time.January, 4, 16, 0)) {
		t.Fatalf("window should be closed at 16:00 exactly")
	}
}
