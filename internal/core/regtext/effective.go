package regtext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// effectiveWindow is how far past the word "effective" a date is looked for
const effectiveWindow = 200

const monthNames = `January|February|March|April|May|June|July|August|September|October|November|December|` +
	`Sept|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec`

var (
	effectiveRe = regexp.MustCompile(`(?i)\beffective`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	dayMonthRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthNames + `)\.?,?\s+(\d{4})\b`)
	monthDayRe  = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	monthYearRe = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?,?\s+(\d{4})\b`)
)

// EffectiveDate finds the date a regulation takes effect
// every occurrence of "effective" is tried in order; within its window an ISO
// date wins over a long form date which wins over a month and year
// the result is formatted YYYY-MM-DD, month-year resolves to the first day
func EffectiveDate(text string) (string, bool) {
	for _, loc := range effectiveRe.FindAllStringIndex(text, -1) {
		end := loc[0] + effectiveWindow
		if end > len(text) {
			end = len(text)
		}
		if d, ok := dateIn(text[loc[0]:end]); ok {
			return d, true
		}
	}
	return "", false
}

func dateIn(w string) (string, bool) {
	for _, m := range isoDateRe.FindAllStringSubmatch(w, -1) {
		if d, ok := ymd(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	for _, m := range dayMonthRe.FindAllStringSubmatch(w, -1) {
		if d, ok := ymd(m[3], month(m[2]), m[1]); ok {
			return d, true
		}
	}
	for _, m := range monthDayRe.FindAllStringSubmatch(w, -1) {
		if d, ok := ymd(m[3], month(m[1]), m[2]); ok {
			return d, true
		}
	}
	for _, m := range monthYearRe.FindAllStringSubmatch(w, -1) {
		if d, ok := ymd(m[2], month(m[1]), "1"); ok {
			return d, true
		}
	}
	return "", false
}

// month maps a month name or abbreviation to its two digit number
func month(name string) string {
	n := strings.ToLower(name)
	if len(n) > 3 {
		n = n[:3]
	}
	i := strings.Index("janfebmaraprmayjunjulaugsepoctnovdec", n)
	if i < 0 || i%3 != 0 {
		return ""
	}
	return fmt.Sprintf("%02d", i/3+1)
}

// ymd validates a calendar date and formats it
func ymd(y, m, d string) (string, bool) {
	yy, err1 := strconv.Atoi(y)
	mm, err2 := strconv.Atoi(m)
	dd, err3 := strconv.Atoi(d)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	t := time.Date(yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if t.Year() != yy || int(t.Month()) != mm || t.Day() != dd {
		return "", false
	}
	return t.Format(time.DateOnly), true
}
