package core

import "time"

// Timestamp wraps time.Time so domain types carry a single time
// representation with RFC3339 JSON encoding.
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp { return Timestamp(t) }

// Now returns the current wall-clock timestamp. Code paths that need
// deterministic time take a Clock instead.
func Now() Timestamp { return Timestamp(time.Now()) }

func (t Timestamp) Time() time.Time { return time.Time(t) }

func (t Timestamp) IsZero() bool { return time.Time(t).IsZero() }

func (t Timestamp) Before(u Timestamp) bool { return time.Time(t).Before(time.Time(u)) }

func (t Timestamp) After(u Timestamp) bool { return time.Time(t).After(time.Time(u)) }

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

// Clock abstracts time.Now so controllers and handlers can be tested with
// a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
