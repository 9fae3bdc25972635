package models

import (
	"fmt"
	"time"
)

// ItemKind classifies a timetable entry for card rendering. Class types are
// free text; anything that is not a recognized kind falls back to Other.
type ItemKind string

const (
	KindLecture    ItemKind = "LECTURE"
	KindTutorial   ItemKind = "TUTORIAL"
	KindAssignment ItemKind = "ASSIGNMENT"
	KindOther      ItemKind = "OTHER"
)

// KindFromClassType maps the free-text classtype column onto a kind.
func KindFromClassType(classType string) ItemKind {
	switch classType {
	case "Lecture":
		return KindLecture
	case "Tutorial":
		return KindTutorial
	default:
		return KindOther
	}
}

// ScheduleItem is one entry of the merged timetable view. StartsAt is the
// single instant built once at ingestion from the date and the
// minutes-since-UTC-midnight time; every comparison and every display
// format derives from it, so no second time representation exists.
type ScheduleItem struct {
	ModuleCode           string    `json:"module_code"`
	Name                 string    `json:"name"`
	Kind                 ItemKind  `json:"kind"`
	Location             *string   `json:"location,omitempty"`
	Date                 string    `json:"date"`
	TimeOfDay            int       `json:"time_of_day"`
	CompletionPercentage *int      `json:"completion_percentage,omitempty"`
	StartsAt             time.Time `json:"starts_at"`
}

// DayView is one rendered day of an agenda window. A day with no items is
// marked Free so callers always receive a value, never an absent key.
type DayView struct {
	Date  string         `json:"date"`
	Free  bool           `json:"free"`
	Items []ScheduleItem `json:"items,omitempty"`
}

// MinutesPerDay bounds the valid range of a stored time of day.
const MinutesPerDay = 24 * 60

// DateKey truncates an ISO date string to its YYYY-MM-DD prefix.
func DateKey(date string) string {
	if len(date) > 10 {
		return date[:10]
	}
	return date
}

// newInstant validates the stored date/time pair and builds the item's
// instant. Stored times are UTC-clock minutes, not local-midnight offsets.
func newInstant(date string, timeOfDay int) (time.Time, string, error) {
	key := DateKey(date)
	day, err := time.Parse("2006-01-02", key)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("parse date %q: %w", date, err)
	}
	if timeOfDay < 0 || timeOfDay >= MinutesPerDay {
		return time.Time{}, "", fmt.Errorf("time of day %d out of range", timeOfDay)
	}
	return day.Add(time.Duration(timeOfDay) * time.Minute), key, nil
}

// ItemFromClass converts a class row into a schedule item. Rows with an
// unparsable date or an out-of-range time are rejected, not sorted against
// an invalid instant.
func ItemFromClass(c Class) (ScheduleItem, error) {
	startsAt, key, err := newInstant(c.StartDate, c.StartTime)
	if err != nil {
		return ScheduleItem{}, err
	}
	location := c.Location
	return ScheduleItem{
		ModuleCode: c.ModuleName,
		Name:       c.ClassType,
		Kind:       KindFromClassType(c.ClassType),
		Location:   &location,
		Date:       key,
		TimeOfDay:  c.StartTime,
		StartsAt:   startsAt,
	}, nil
}

// ItemFromAssignment converts an assignment row into a schedule item due at
// its deadline.
func ItemFromAssignment(a Assignment) (ScheduleItem, error) {
	startsAt, key, err := newInstant(a.DueDate, a.TimeDueDate)
	if err != nil {
		return ScheduleItem{}, err
	}
	percentage := a.Percentage
	return ScheduleItem{
		ModuleCode:           a.ModuleName,
		Name:                 a.Name,
		Kind:                 KindAssignment,
		Date:                 key,
		TimeOfDay:            a.TimeDueDate,
		CompletionPercentage: &percentage,
		StartsAt:             startsAt,
	}, nil
}

// FormatTimeOfDay renders a minutes-since-UTC-midnight value as 24-hour
// HH:MM of the UTC clock.
func FormatTimeOfDay(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
