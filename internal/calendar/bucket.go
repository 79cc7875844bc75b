package calendar

import "time"

// Bucket is a display grouping for the sidebar.
type Bucket string

const (
	BucketNone     Bucket = ""
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
	BucketFuture   Bucket = "future"
)

// Classify compares the event's date with now and now plus one calendar day,
// by year, month and day only. Events without a date belong to no bucket.
// A date that does not parse is neither today nor tomorrow, so it is future.
func Classify(e Event, now time.Time) Bucket {
	if e.Date == "" {
		return BucketNone
	}
	day, ok := e.Day(now.Location())
	if !ok {
		return BucketFuture
	}
	switch {
	case sameDay(day, now):
		return BucketToday
	case sameDay(day, now.AddDate(0, 0, 1)):
		return BucketTomorrow
	default:
		return BucketFuture
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type Groups struct {
	Today    []Event `json:"today"`
	Tomorrow []Event `json:"tomorrow"`
	Future   []Event `json:"future"`
}

// Group splits events into buckets, keeping their relative order.
func Group(events []Event, now time.Time) Groups {
	var g Groups
	for _, e := range events {
		switch Classify(e, now) {
		case BucketToday:
			g.Today = append(g.Today, e)
		case BucketTomorrow:
			g.Tomorrow = append(g.Tomorrow, e)
		case BucketFuture:
			g.Future = append(g.Future, e)
		}
	}
	return g
}

// Filter returns the events classified into b.
func Filter(events []Event, b Bucket, now time.Time) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if b != BucketNone && Classify(e, now) == b {
			out = append(out, e)
		}
	}
	return out
}

// OnDate returns the events whose date is exactly day.
func OnDate(events []Event, day time.Time) []Event {
	want := DateString(day)
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Date == want {
			out = append(out, e)
		}
	}
	return out
}
