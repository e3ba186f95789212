package holidays

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicate     = errors.New("holiday already exists")
	ErrNotFound      = errors.New("holiday not found")
	ErrUninitialized = errors.New("holiday store not initialized")
)

const isoLayout = "2006-01-02"

// dayMonthLayouts are tried in order after ISO. One or two digit days and
// months are accepted.
var dayMonthLayouts = []string{"2/1/2006", "2-1-2006"}

// Holiday is a public holiday. Date is always ISO YYYY-MM-DD.
type Holiday struct {
	Name string `json:"name" yaml:"name"`
	Date string `json:"date" yaml:"date"`
}

// Day returns the holiday date at UTC midnight.
func (h Holiday) Day() time.Time {
	t, _ := time.Parse(isoLayout, h.Date)
	return t
}

// ParseDate accepts YYYY-MM-DD, DD/MM/YYYY and DD/MM. The short form takes
// the year from now.
func ParseDate(raw string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrInvalidInput
	}
	if t, err := time.Parse(isoLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range dayMonthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse("2/1", s); err == nil {
		full := time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// 29/02 in a non-leap year normalizes into March.
		if full.Day() != t.Day() {
			return time.Time{}, ErrInvalidInput
		}
		return full, nil
	}
	return time.Time{}, ErrInvalidInput
}

// FormatDate renders t as ISO.
func FormatDate(t time.Time) string {
	return t.Format(isoLayout)
}

// normalize trims the name and canonicalizes the date.
func normalize(name, date string, now time.Time) (Holiday, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Holiday{}, ErrInvalidInput
	}
	day, err := ParseDate(date, now)
	if err != nil {
		return Holiday{}, err
	}
	return Holiday{Name: name, Date: FormatDate(day)}, nil
}
