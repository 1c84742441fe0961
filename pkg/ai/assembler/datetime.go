package assembler

import "time"

// DateTime is the set of calendar facts derived from the request clock.
type DateTime struct {
	Timestamp         string `json:"timestamp"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	DayOfWeek         string `json:"day_of_week"`
	Month             string `json:"month"`
	Year              int    `json:"year"`
	FormattedReadable string `json:"formatted_readable"`
	UnixTimestamp     int64  `json:"unix_timestamp"`
	WeekNumber        int    `json:"week_number"`
	IsWeekend         bool   `json:"is_weekend"`
	Timezone          string `json:"timezone"`
}

func NewDateTime(t time.Time) DateTime {
	_, week := t.ISOWeek()
	return DateTime{
		Timestamp:         t.Format(time.RFC3339),
		Date:              t.Format("2006-01-02"),
		Time:              t.Format("15:04:05"),
		DayOfWeek:         t.Weekday().String(),
		Month:             t.Month().String(),
		Year:              t.Year(),
		FormattedReadable: t.Format("Monday, January 02, 2006 at 03:04 PM"),
		UnixTimestamp:     t.Unix(),
		WeekNumber:        week,
		IsWeekend:         t.Weekday() == time.Saturday || t.Weekday() == time.Sunday,
		Timezone:          t.Location().String(),
	}
}
