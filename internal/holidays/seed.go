package holidays

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var fixedHolidays = []struct {
	name  string
	month time.Month
	day   int
}{
	{"New Year's Day", time.January, 1},
	{"Independence Day", time.March, 20},
	{"Martyrs' Day", time.April, 9},
	{"Labour Day", time.May, 1},
	{"Republic Day", time.July, 25},
	{"Women's Day", time.August, 13},
	{"Evacuation Day", time.October, 15},
	{"Revolution Day", time.December, 17},
}

// SeedFunc produces the initial holiday list for an empty store.
type SeedFunc func(now time.Time) ([]Holiday, error)

// DefaultSeed returns the fixed national holidays followed by the Islamic
// holidays of now's year.
func DefaultSeed(now time.Time) ([]Holiday, error) {
	year := now.Year()
	out := make([]Holiday, 0, len(fixedHolidays)+len(islamicObservances))
	for _, f := range fixedHolidays {
		out = append(out, Holiday{
			Name: f.name,
			Date: FormatDate(time.Date(year, f.month, f.day, 0, 0, 0, 0, time.UTC)),
		})
	}
	return append(out, IslamicHolidays(year)...), nil
}

type seedFile struct {
	Holidays []Holiday `yaml:"holidays"`
}

// FileSeed reads a YAML seed:
//
//	holidays:
//	  - name: New Year's Day
//	    date: 01/01
//
// Dates use any form ParseDate accepts.
func FileSeed(path string) SeedFunc {
	return func(now time.Time) ([]Holiday, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		var doc seedFile
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse seed file: %w", err)
		}
		out := make([]Holiday, 0, len(doc.Holidays))
		seen := make(map[Holiday]struct{}, len(doc.Holidays))
		for i, h := range doc.Holidays {
			norm, err := normalize(h.Name, h.Date, now)
			if err != nil {
				return nil, fmt.Errorf("seed entry %d (%q): %w", i, h.Name, err)
			}
			if _, dup := seen[norm]; dup {
				continue
			}
			seen[norm] = struct{}{}
			out = append(out, norm)
		}
		return out, nil
	}
}
