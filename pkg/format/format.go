package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/recurrence-scheduler/scheduler-web/pkg/api"
	"github.com/teambition/rrule-go"
)

type Locale string

const (
	Japanese Locale = "ja"
	English  Locale = "en"
)

// ParseLocale maps a config value to a Locale, defaulting to Japanese.
func ParseLocale(s string) Locale {
	if strings.EqualFold(s, string(English)) {
		return English
	}
	return Japanese
}

const (
	japaneseDateTimeLayout = "2006/01/02 15:04"
	englishDateTimeLayout  = "01/02/2006, 03:04 PM"
	DateLayout             = "2006-01-02"
	DateTimeLocalLayout    = "2006-01-02T15:04"
)

// FormatDateTime renders an RFC3339 timestamp in loc. Input that does not parse is returned unchanged.
func FormatDateTime(iso string, loc *time.Location, locale Locale) string {
	t, err := ParseTimestamp(iso)
	if err != nil {
		return iso
	}
	if loc != nil {
		t = t.In(loc)
	}
	if locale == English {
		return t.Format(englishDateTimeLayout)
	}
	return t.Format(japaneseDateTimeLayout)
}

// ParseTimestamp accepts RFC3339 with or without fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

var dayLabels = map[Locale]map[string]string{
	Japanese: {"MO": "月", "TU": "火", "WE": "水", "TH": "木", "FR": "金", "SA": "土", "SU": "日"},
	English:  {"MO": "Mon", "TU": "Tue", "WE": "Wed", "TH": "Thu", "FR": "Fri", "SA": "Sat", "SU": "Sun"},
}

// Weekdays lists the RRULE day codes in Monday-first order.
var Weekdays = []string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

func DayLabel(code string, locale Locale) string {
	labels, ok := dayLabels[locale]
	if !ok {
		labels = dayLabels[Japanese]
	}
	if label, ok := labels[code]; ok {
		return label
	}
	return code
}

// WeekdayLabel labels a time.Weekday for grid headers.
func WeekdayLabel(d time.Weekday, locale Locale) string {
	codes := [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}
	return DayLabel(codes[d], locale)
}

type rruleLabels struct {
	freq, interval, days, repeats string
}

var rruleText = map[Locale]rruleLabels{
	Japanese: {freq: "頻度", interval: "間隔", days: "曜日", repeats: "繰り返しあり"},
	English:  {freq: "Frequency", interval: "Interval", days: "Days", repeats: "Repeats"},
}

// FormatRRule describes a recurrence rule for display. A nil rule yields "".
func FormatRRule(rule *api.RecurrenceRule, locale Locale) string {
	if rule == nil {
		return ""
	}
	labels, ok := rruleText[locale]
	if !ok {
		labels = rruleText[Japanese]
	}

	var parts []string
	if rule.Freq != "" {
		parts = append(parts, fmt.Sprintf("%s: %s", labels.freq, rule.Freq))
	}
	if rule.Interval > 1 {
		parts = append(parts, fmt.Sprintf("%s: %d", labels.interval, rule.Interval))
	}
	if len(rule.ByDay) > 0 {
		days := make([]string, len(rule.ByDay))
		for i, d := range rule.ByDay {
			days[i] = DayLabel(d, locale)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", labels.days, strings.Join(days, ", ")))
	}
	if len(parts) == 0 {
		return labels.repeats
	}
	return strings.Join(parts, ", ")
}

var englishMonths = [...]string{"January", "February", "March", "April", "May", "June", "July",
	"August", "September", "October", "November", "December"}

func MonthName(year int, month time.Month, locale Locale) string {
	if locale == English {
		return fmt.Sprintf("%s %d", englishMonths[month-1], year)
	}
	return fmt.Sprintf("%d年%d月", year, int(month))
}

// DefaultDateRange returns the first and last day of now's month as YYYY-MM-DD.
func DefaultDateRange(now time.Time) (start, end string) {
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}

// DayRange turns two YYYY-MM-DD dates into the RFC3339 UTC bounds from startDate 00:00:00 to
// endDate 23:59:59 in loc.
func DayRange(startDate, endDate string, loc *time.Location) (string, string, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DateLayout, startDate, loc)
	if err != nil {
		return "", "", fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	endDay, err := time.ParseInLocation(DateLayout, endDate, loc)
	if err != nil {
		return "", "", fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	end := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, 0, loc)
	if end.Before(start) {
		return "", "", fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}
	return start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339), nil
}

// RRuleString renders rule as RFC 5545 RRULE text and checks that it parses.
func RRuleString(rule *api.RecurrenceRule) (string, error) {
	if rule == nil || rule.Freq == "" {
		return "", nil
	}
	parts := []string{"FREQ=" + strings.ToUpper(rule.Freq)}
	if rule.Interval > 0 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(rule.Interval))
	}
	if rule.Count > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(rule.Count))
	}
	if rule.Until != "" {
		until, err := ParseTimestamp(rule.Until)
		if err != nil {
			return "", fmt.Errorf("invalid until: %w", err)
		}
		parts = append(parts, "UNTIL="+until.UTC().Format("20060102T150405Z"))
	}
	if len(rule.ByDay) > 0 {
		parts = append(parts, "BYDAY="+strings.Join(rule.ByDay, ","))
	}
	if len(rule.ByMonthDay) > 0 {
		parts = append(parts, "BYMONTHDAY="+joinInts(rule.ByMonthDay))
	}
	if len(rule.ByMonth) > 0 {
		parts = append(parts, "BYMONTH="+joinInts(rule.ByMonth))
	}
	if len(rule.ByWeekNo) > 0 {
		parts = append(parts, "BYWEEKNO="+joinInts(rule.ByWeekNo))
	}
	if rule.Wkst != "" {
		parts = append(parts, "WKST="+rule.Wkst)
	}

	s := strings.Join(parts, ";")
	if _, err := rrule.StrToRRule(s); err != nil {
		return "", fmt.Errorf("invalid recurrence rule %q: %w", s, err)
	}
	return s, nil
}

func joinInts(values []int) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, ",")
}
