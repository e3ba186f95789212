package leave

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "02/01/2006"

// Row is one line of the workload sheet.
type Row struct {
	Initial   string
	Details   string
	Workload  float64
	Dates     string
	Durations string
}

type weekKey struct {
	year, week int
}

// GroupByWeek summarizes entries per initial. Initials are sorted, weeks are
// in calendar order and days keep their input order within a week, so the
// same entries always give the same rows.
func GroupByWeek(entries []Entry) []Row {
	byInitial := make(map[string]map[weekKey][]Entry)
	for _, e := range entries {
		weeks, ok := byInitial[e.Initial]
		if !ok {
			weeks = make(map[weekKey][]Entry)
			byInitial[e.Initial] = weeks
		}
		y, w := e.Date.ISOWeek()
		k := weekKey{year: y, week: w}
		weeks[k] = append(weeks[k], e)
	}

	initials := make([]string, 0, len(byInitial))
	for initial := range byInitial {
		initials = append(initials, initial)
	}
	sort.Strings(initials)

	rows := make([]Row, 0, len(initials))
	for _, initial := range initials {
		weeks := byInitial[initial]
		keys := make([]weekKey, 0, len(weeks))
		for k := range weeks {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].year != keys[j].year {
				return keys[i].year < keys[j].year
			}
			return keys[i].week < keys[j].week
		})

		var (
			details   []string
			dates     []string
			durations []string
			total     float64
		)
		for _, k := range keys {
			weekDates := make([]string, 0, len(weeks[k]))
			var weekTotal float64
			for _, e := range weeks[k] {
				weekDates = append(weekDates, e.Date.Format(dateLayout))
				durations = append(durations, FormatDuration(e.Duration))
				weekTotal += e.Duration
			}
			details = append(details, FormatDuration(weekTotal)+" MD ("+joinWithAnd(weekDates)+")")
			dates = append(dates, weekDates...)
			total += weekTotal
		}

		rows = append(rows, Row{
			Initial:   initial,
			Details:   strings.Join(details, ", and "),
			Workload:  total,
			Dates:     strings.Join(dates, ", "),
			Durations: strings.Join(durations, ", "),
		})
	}
	return rows
}

// Exclude drops entries for which skip reports true.
func Exclude(entries []Entry, skip func(time.Time) bool) []Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if !skip(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// FormatDuration renders 1 as "1" and 0.5 as "0.5".
func FormatDuration(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinWithAnd(items []string) string {
	if len(items) <= 1 {
		return strings.Join(items, "")
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
