package holidays

import (
	"log"
	"time"

	"github.com/hablullah/go-hijri"
)

type islamicDay struct {
	month, day int64
}

var islamicObservances = []struct {
	name string
	date islamicDay
}{
	{name: "Eid al-Fitr", date: islamicDay{month: 10, day: 1}},
	{name: "Eid al-Adha", date: islamicDay{month: 12, day: 10}},
	{name: "Islamic New Year", date: islamicDay{month: 1, day: 1}},
	{name: "Ramadan Start", date: islamicDay{month: 9, day: 1}},
	{name: "Mawlid al-Nabi", date: islamicDay{month: 3, day: 12}},
}

// IslamicHolidays returns the Islamic observances falling in the Gregorian
// year, dated by the Umm al-Qura calendar. Years outside its table (before
// 1937 or after 2076) use the arithmetical calendar instead. The Islamic year
// is shorter, so an observance may occur twice; only the first occurrence is
// kept.
func IslamicHolidays(year int) []Holiday {
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	toGregorian, startYear, ok := ummAlQuraYear(first, last)
	if !ok {
		toGregorian, startYear, ok = tabularYear(first)
		if !ok {
			log.Printf("holidays: no Islamic calendar covers %d", year)
			return nil
		}
	}

	out := make([]Holiday, 0, len(islamicObservances))
	for _, obs := range islamicObservances {
		for hy := startYear; hy <= startYear+1; hy++ {
			day, ok := toGregorian(hy, obs.date)
			if ok && day.Year() == year {
				out = append(out, Holiday{Name: obs.name, Date: FormatDate(day)})
				break
			}
		}
	}
	return out
}

type islamicToGregorian func(year int64, d islamicDay) (time.Time, bool)

// ummAlQuraYear converts only dates between first and last, since the
// lunation table ends abruptly.
func ummAlQuraYear(first, last time.Time) (islamicToGregorian, int64, bool) {
	from, err := hijri.CreateUmmAlQuraDate(first)
	if err != nil {
		return nil, 0, false
	}
	to, err := hijri.CreateUmmAlQuraDate(last)
	if err != nil {
		return nil, 0, false
	}
	convert := func(year int64, d islamicDay) (time.Time, bool) {
		if compareIslamic(year, d, from) < 0 || compareIslamic(year, d, to) > 0 {
			return time.Time{}, false
		}
		return hijri.UmmAlQuraDate{Year: year, Month: d.month, Day: d.day}.ToGregorian().UTC(), true
	}
	return convert, from.Year, true
}

func tabularYear(first time.Time) (islamicToGregorian, int64, bool) {
	from, err := hijri.CreateHijriDate(first, hijri.Default)
	if err != nil {
		return nil, 0, false
	}
	convert := func(year int64, d islamicDay) (time.Time, bool) {
		return hijri.HijriDate{Year: year, Month: d.month, Day: d.day, Pattern: hijri.Default}.ToGregorian().UTC(), true
	}
	return convert, from.Year, true
}

func compareIslamic(year int64, d islamicDay, ref hijri.UmmAlQuraDate) int {
	switch {
	case year != ref.Year:
		return sign(year - ref.Year)
	case d.month != ref.Month:
		return sign(d.month - ref.Month)
	default:
		return sign(d.day - ref.Day)
	}
}

func sign(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
