package fat

import "time"

// ParseDate decodes a FAT date stamp. Bits 0-4 hold the day of the month,
// bits 5-8 the month and bits 9-15 the years since 1980.
// A zero day or month yields time.Time{} so that IsZero can be used.
func ParseDate(input uint16) time.Time {
	day := input & 0x1F
	month := input & 0x1E0 >> 5
	year := input & 0xFE00 >> 9

	if day == 0 || month == 0 {
		return time.Time{}
	}
	return time.Date(1980+int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
}

// ParseTime decodes a FAT time stamp with a granularity of two seconds.
// Bits 0-4 hold the 2-second count, bits 5-10 the minutes and bits 11-15 the hours.
// The returned value is on January 1 of year 1. Out of range values are clamped to 23:59:59.
func ParseTime(input uint16) time.Time {
	seconds := int(input&0x1F) * 2
	minutes := input & 0x7E0 >> 5
	hours := input & 0xF800 >> 11

	result := time.Date(1, 1, 1, int(hours), int(minutes), seconds, 0, time.UTC)
	if result.Day() > 1 {
		return time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)
	}
	return result
}

// EncodeDate packs the date part of t. Years outside 1980-2107 are clamped.
func EncodeDate(t time.Time) uint16 {
	year := t.Year() - 1980
	switch {
	case year < 0:
		return 1<<5 | 1
	case year > 127:
		year = 127
	}
	return uint16(year)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
}

// EncodeTime packs the time of day of t, truncated to even seconds.
func EncodeTime(t time.Time) uint16 {
	return uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
}

// ModTime combines a FAT date and time stamp into a single value.
func ModTime(date, tm uint16) time.Time {
	d := ParseDate(date)
	if d.IsZero() {
		return time.Time{}
	}
	t := ParseTime(tm)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
