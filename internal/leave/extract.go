// Package leave turns free-text leave notes from team workbooks into dated
// entries and weekly workload summaries.
package leave

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxRangeDays bounds "from A to B" style ranges.
const maxRangeDays = 366

// Entry is one day (or part of a day) of leave.
type Entry struct {
	Initial  string
	Duration float64
	Date     time.Time
}

type rule struct {
	re      *regexp.Regexp
	extract func(m []string, text string, year int) []dated
}

type dated struct {
	day      time.Time
	duration float64
}

const (
	fullDate = `(\d{2}/\d{2}/\d{4})`
	dashDate = `(\d{2}-\d{2}-\d{4})`
	number   = `(\d+(?:[.,]\d+)?)`
	months   = `(January|February|March|April|May|June|July|August|September|October|November|December|` +
		`Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)`
)

// rules are tried in order; the first one that matches a line decides how
// the whole line is read, and every match of that rule on the line counts.
var rules = []rule{
	{ // 2 days off (01/02/2024)
		re: regexp.MustCompile(number + `\s*days?\s*(?:off|holiday)?\s*\(\s*` + fullDate + `\s*\)`),
		extract: func(m []string, _ string, _ int) []dated {
			return single(m[2], "02/01/2006", parseNumber(m[1]))
		},
	},
	{ // 3 days holiday (from 18/06/2024 to 20/06/2024)
		re: regexp.MustCompile(number + `\s*days?\s*holiday\s*\(\s*from\s*` + fullDate + `\s*to\s*` + fullDate + `\s*\)`),
		extract: func(m []string, _ string, _ int) []dated {
			return spread(dayRange(m[2], m[3], "02/01/2006"), parseNumber(m[1]))
		},
	},
	{ // 4 days: 04/07/2024, 05/07/2024 and 22/07/2024
		re: regexp.MustCompile(number + `\s*days?\s*:\s*(\d{2}/\d{2}/\d{4}(?:\s*(?:,|and)\s*\d{2}/\d{2}/\d{4})*)`),
		extract: func(m []string, _ string, _ int) []dated {
			return spread(parseAll(fullDateRe.FindAllString(m[2], -1), "02/01/2006"), parseNumber(m[1]))
		},
	},
	{ // RES off sick for 3 days (03/07/2024 to 05/07/2024)
		re: regexp.MustCompile(`(?i)\w+\s+off\s+(?:sick\s+)?for\s+` + number + `\s+days?\s*\(\s*` + fullDate + `\s+to\s+` + fullDate + `\s*\)`),
		extract: func(m []string, _ string, _ int) []dated {
			return spread(dayRange(m[2], m[3], "02/01/2006"), parseNumber(m[1]))
		},
	},
	{ // 1.5 d: 01/02/2024
		re: regexp.MustCompile(number + `\s*d\s*:\s*` + fullDate),
		extract: func(m []string, _ string, _ int) []dated {
			return single(m[2], "02/01/2006", parseNumber(m[1]))
		},
	},
	{ // 0.5 MD: 12/02/2024
		re: regexp.MustCompile(number + `\s*MD\s*:\s*` + fullDate),
		extract: func(m []string, _ string, _ int) []dated {
			return single(m[2], "02/01/2006", parseNumber(m[1]))
		},
	},
	{ // 01/02/2024 Afternoon
		re: regexp.MustCompile(`(?i)` + fullDate + `\s*afternoon`),
		extract: func(m []string, _ string, _ int) []dated {
			return single(m[1], "02/01/2006", 0.5)
		},
	},
	{ // 01:17-06-2024->18-06-2024
		re: regexp.MustCompile(`\d+\s*:\s*` + dashDate + `(?:\s*->\s*` + dashDate + `)?`),
		extract: func(m []string, _ string, _ int) []dated {
			end := m[2]
			if end == "" {
				end = m[1]
			}
			return each(dayRange(m[1], end, "02-01-2006"), 1)
		},
	},
	{ // 02 days off : 20-06-2024 / 21-06-2024
		re: regexp.MustCompile(`\d+\s*days?\s*off\s*:\s*` + dashDate + `\s*/\s*` + dashDate),
		extract: func(m []string, _ string, _ int) []dated {
			return each(parseAll([]string{m[1], m[2]}, "02-01-2006"), 1)
		},
	},
	{ // 23rd of February; "0,5 day of 23rd of February" is half a day
		re: regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)\s+of\s+` + months),
		extract: func(m []string, text string, year int) []dated {
			duration := 1.0
			if strings.Contains(text, "0.5") || strings.Contains(text, "0,5") {
				duration = 0.5
			}
			return dayOfMonth(m[1], m[2], year, duration)
		},
	},
	{ // CKA off during week 27
		re: regexp.MustCompile(`(?i)\w+\s*off\s*during\s*week\s*(\d{1,2})`),
		extract: func(m []string, _ string, year int) []dated {
			week, err := strconv.Atoi(m[1])
			if err != nil || week < 1 || week > 53 {
				return nil
			}
			return each(isoWeekDays(year, week), 1)
		},
	},
	{ // 10 January (Half day off)
		re: regexp.MustCompile(`(?i)(\d{1,2})\s+` + months + `\b\s*(?:\((Half day off|Sick Day|Day off)\))?`),
		extract: func(m []string, _ string, year int) []dated {
			duration := 1.0
			if strings.EqualFold(m[3], "Half day off") {
				duration = 0.5
			}
			return dayOfMonth(m[1], m[2], year, duration)
		},
	},
	{ // June: 3, 4(0.5d)
		re: regexp.MustCompile(`(?i)` + months + `\s*:\s*((?:\d{1,2}(?:\(\d+(?:[.,]\d+)?d\))?(?:\s*,\s*|\s+and\s+|\s*))+)`),
		extract: func(m []string, _ string, year int) []dated {
			var out []dated
			for _, part := range monthListRe.FindAllStringSubmatch(m[2], -1) {
				duration := 1.0
				if part[2] != "" {
					duration = parseNumber(part[2])
				}
				out = append(out, dayOfMonth(part[1], m[1], year, duration)...)
			}
			return out
		},
	},
}

// Bare dates are read last, with every occurrence on the line counted.
var (
	fullDateRe  = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	dayMonthRe  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)
	monthListRe = regexp.MustCompile(`(\d{1,2})(?:\((\d+(?:[.,]\d+)?)d\))?`)
	afternoonRe = regexp.MustCompile(`(?i)afternoon`)
)

// Extract reads one line of leave text. Dates without a year use year.
// Lines no rule understands yield nothing.
func Extract(text, initial string, year int) []Entry {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var found []dated
	matched := false
	for _, r := range rules {
		matches := r.re.FindAllStringSubmatch(text, -1)
		if matches == nil {
			continue
		}
		for _, m := range matches {
			found = append(found, r.extract(m, text, year)...)
		}
		matched = true
		break
	}
	if !matched {
		found = bareDates(text, year)
	}

	out := make([]Entry, 0, len(found))
	for _, d := range found {
		if d.duration <= 0 {
			continue
		}
		out = append(out, Entry{Initial: initial, Duration: d.duration, Date: d.day})
	}
	return out
}

// ExtractCell splits a multi-line cell and extracts every line.
func ExtractCell(cell, initial string, year int) []Entry {
	var out []Entry
	for _, line := range strings.Split(cell, "\n") {
		out = append(out, Extract(line, initial, year)...)
	}
	return out
}

func bareDates(text string, year int) []dated {
	duration := 1.0
	if afternoonRe.MatchString(text) {
		duration = 0.5
	}
	if full := fullDateRe.FindAllString(text, -1); len(full) > 0 {
		return each(parseAll(full, "02/01/2006"), duration)
	}
	var out []dated
	for _, m := range dayMonthRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if t, ok := makeDate(year, month, day); ok {
			out = append(out, dated{day: t, duration: duration})
		}
	}
	return out
}

func single(raw, layout string, duration float64) []dated {
	t, err := time.Parse(layout, raw)
	if err != nil {
		return nil
	}
	return []dated{{day: t, duration: duration}}
}

func parseAll(raws []string, layout string) []time.Time {
	out := make([]time.Time, 0, len(raws))
	for _, raw := range raws {
		if t, err := time.Parse(layout, raw); err == nil {
			out = append(out, t)
		}
	}
	return out
}

func dayRange(startRaw, endRaw, layout string) []time.Time {
	start, err := time.Parse(layout, startRaw)
	if err != nil {
		return nil
	}
	end, err := time.Parse(layout, endRaw)
	if err != nil || end.Before(start) {
		return nil
	}
	var out []time.Time
	for d := start; !d.After(end) && len(out) < maxRangeDays; d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// spread divides total evenly over days.
func spread(days []time.Time, total float64) []dated {
	if len(days) == 0 {
		return nil
	}
	return each(days, total/float64(len(days)))
}

func each(days []time.Time, duration float64) []dated {
	out := make([]dated, 0, len(days))
	for _, d := range days {
		out = append(out, dated{day: d, duration: duration})
	}
	return out
}

func isoWeekDays(year, week int) []time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

func dayOfMonth(dayRaw, monthRaw string, year int, duration float64) []dated {
	day, err := strconv.Atoi(dayRaw)
	if err != nil {
		return nil
	}
	month, ok := monthByName[strings.ToLower(monthRaw)]
	if !ok {
		return nil
	}
	t, ok := makeDate(year, int(month), day)
	if !ok {
		return nil
	}
	return []dated{{day: t, duration: duration}}
}

func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func parseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

var monthByName = func() map[string]time.Month {
	out := make(map[string]time.Month, 24)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		out[name] = m
		out[name[:3]] = m
	}
	out["sept"] = time.September
	return out
}()
