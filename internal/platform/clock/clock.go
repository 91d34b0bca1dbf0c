package clock

import "time"

// Clock supplies the current instant. Calendar-day decisions (today, yesterday,
// day-of-month parity) are taken in the clock's location.
type Clock interface {
	Now() time.Time
}

type system struct {
	loc *time.Location
}

// System returns a wall clock reporting time in loc (UTC when nil).
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return system{loc: loc}
}

func (s system) Now() time.Time { return time.Now().In(s.loc) }

// Fixed always reports t.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }

// LoadLocation resolves an IANA zone name, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
