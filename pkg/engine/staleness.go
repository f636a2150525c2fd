package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// OutdatedReason is the reason attached to stale driver findings.
const OutdatedReason = "Older than 6 months"

// SixMonthsBefore subtracts six calendar months from now. The day is clamped
// to the length of the target month, so Aug 31 becomes Feb 28 (or 29).
func SixMonthsBefore(now time.Time) time.Time {
	return MonthsBefore(now, 6)
}

// MonthsBefore subtracts n calendar months from t with day clamping.
func MonthsBefore(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := y*12 + int(m-1) - n
	ty, tm := total/12, time.Month(total%12+1)
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var jsonDatePattern = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

// ParseDriverDate understands the CIM datetime form WMI returns
// ("20230115000000.000000-000") and the "/Date(ms)/" form ConvertTo-Json
// produces for DateTime values.
func ParseDriverDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty driver date")
	}
	if m := jsonDatePattern.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	base := strings.SplitN(s, ".", 2)[0]
	return time.Parse("20060102150405", base)
}

// IsOutdated reports whether date lies more than six calendar months before now.
func IsOutdated(date, now time.Time) bool {
	return date.Before(SixMonthsBefore(now))
}

// OutdatedDrivers returns a finding for every driver record whose
// driver_date is older than six months. Records without a parseable date are
// skipped.
func OutdatedDrivers(drivers []Record, now time.Time, category string) []Finding {
	var out []Finding
	for _, d := range drivers {
		raw := d.Get("driver_date")
		if raw == "" {
			continue
		}
		date, err := ParseDriverDate(raw)
		if err != nil {
			continue
		}
		if !IsOutdated(date, now) {
			continue
		}
		out = append(out, Finding{
			Record:   d,
			Subject:  d.GetOr("device_name", "Unknown"),
			Category: category,
			Reason:   OutdatedReason,
			Severity: SeverityMedium,
			Detail:   fmt.Sprintf("Version: %s, Date: %s", d.GetOr("driver_version", "Unknown"), date.Format("2006-01-02")),
		})
	}
	return out
}
