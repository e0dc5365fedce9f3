package utils

import "time"

// All bidding and submission windows are evaluated on the Africa/Nairobi wall
// clock (EAT, UTC+3, no DST), never on machine-local time.
var nairobi *time.Location

func init() {
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		loc = time.FixedZone("EAT", 3*60*60)
	}
	nairobi = loc
}

// BlackoutMessage names the weekly maintenance window in bid rejections.
const BlackoutMessage = "Bidding is closed for weekly maintenance from Thursday 4:00 PM to Friday 8:00 AM"

// NairobiTime converts t to the Nairobi wall clock.
func NairobiTime(t time.Time) time.Time {
	return t.In(nairobi)
}

// InBidBlackout reports whether t falls inside the weekly bidding blackout:
// Thursday 16:00 through Friday 08:00, Nairobi time.
func InBidBlackout(t time.Time) bool {
	lt := t.In(nairobi)
	switch lt.Weekday() {
	case time.Thursday:
		return lt.Hour() >= 16
	case time.Friday:
		return lt.Hour() < 8
	}
	return false
}

// SubmissionDeadline computes the cutoff for submitting work on a bid placed
// at bidAt: 16:00 the same Nairobi calendar day, or 16:00 the following day
// when the bid was placed at or after 17:00.
func SubmissionDeadline(bidAt time.Time) time.Time {
	lt := bidAt.In(nairobi)
	day := lt
	if lt.Hour() >= 17 {
		day = lt.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 16, 0, 0, 0, nairobi)
}

// SubmissionWindowOpen reports whether now is still before the submission
// deadline of a bid placed at bidAt.
func SubmissionWindowOpen(bidAt, now time.Time) bool {
	return now.Before(SubmissionDeadline(bidAt))
}
