package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Days of the week as used in TimeLocation.Days.
const (
	Monday = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayCodes = []struct {
	code string
	day  int
}{
	{"M", Monday}, {"T", Tuesday}, {"W", Wednesday}, {"R", Thursday},
	{"F", Friday}, {"S", Saturday}, {"U", Sunday},
}

// TimeLocation is a weekly meeting pattern. Start and Length are in
// minutes; Start counts from midnight.
type TimeLocation struct {
	Days   int
	Start  int
	Length int
}

// Overlaps reports whether both meet on a common day at a common
// time. A nil TimeLocation (arranged hours) overlaps nothing.
func (t *TimeLocation) Overlaps(o *TimeLocation) bool {
	if t == nil || o == nil {
		return false
	}
	if t.Days&o.Days == 0 {
		return false
	}
	return t.Start < o.Start+o.Length && o.Start < t.Start+t.Length
}

func (t *TimeLocation) String() string {
	if t == nil {
		return "Arr Hrs"
	}
	return fmt.Sprintf("%s %02d:%02d-%02d:%02d", FormatDays(t.Days),
		t.Start/60, t.Start%60, (t.Start+t.Length)/60, (t.Start+t.Length)%60)
}

// ParseDays reads day codes such as "MWF" or "TR".
func ParseDays(s string) (int, error) {
	days := 0
	for _, c := range strings.ToUpper(strings.TrimSpace(s)) {
		found := false
		for _, d := range dayCodes {
			if string(c) == d.code {
				days |= d.day
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("invalid day code %q in %q", c, s)
		}
	}
	if days == 0 {
		return 0, fmt.Errorf("no days given")
	}
	return days, nil
}

func FormatDays(days int) string {
	var sb strings.Builder
	for _, d := range dayCodes {
		if days&d.day != 0 {
			sb.WriteString(d.code)
		}
	}
	return sb.String()
}

// ParseClock reads a HH:MM time of day and returns minutes since
// midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// NewTimeLocation builds a TimeLocation from day codes, a HH:MM start
// and a length in minutes.
func NewTimeLocation(days, start string, length int) (*TimeLocation, error) {
	d, err := ParseDays(days)
	if err != nil {
		return nil, err
	}
	s, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, fmt.Errorf("invalid length %d: must be positive", length)
	}
	return &TimeLocation{Days: d, Start: s, Length: length}, nil
}
