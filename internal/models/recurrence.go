package models

import (
	"errors"
	"time"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) IsValid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

var (
	ErrRecurrenceNoSchedule      = errors.New("recurrence requires a frequency or interval_days")
	ErrRecurrenceInvalidFreq     = errors.New("recurrence frequency must be daily, weekly or monthly")
	ErrRecurrenceInvalidInterval = errors.New("recurrence interval must be at least 1")
)

// Recurrence is embedded in Task. When Enabled is false every other field is nil.
type Recurrence struct {
	Enabled         bool       `gorm:"not null;default:false" json:"enabled"`
	Frequency       *Frequency `gorm:"type:varchar(10)" json:"frequency"`
	IntervalDays    *int       `json:"interval_days"`
	Interval        *int       `json:"interval"`
	EndDate         *time.Time `json:"end_date"`
	NextOccurrence  *time.Time `json:"next_occurrence"`
	OriginalDueDate *time.Time `json:"original_due_date"`
}

// Normalize clears every field of a disabled descriptor and defaults the interval to 1.
func (r *Recurrence) Normalize() {
	if !r.Enabled {
		*r = Recurrence{}
		return
	}
	if r.IntervalDays == nil && r.Interval == nil {
		one := 1
		r.Interval = &one
	}
}

// Validate checks an enabled descriptor.
func (r Recurrence) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.IntervalDays != nil {
		if *r.IntervalDays < 1 {
			return ErrRecurrenceInvalidInterval
		}
		return nil
	}
	if r.Frequency == nil {
		return ErrRecurrenceNoSchedule
	}
	if !r.Frequency.IsValid() {
		return ErrRecurrenceInvalidFreq
	}
	if r.Interval != nil && *r.Interval < 1 {
		return ErrRecurrenceInvalidInterval
	}
	return nil
}

// Clone returns a deep copy.
func (r Recurrence) Clone() Recurrence {
	c := r
	c.Frequency = clonePtr(r.Frequency)
	c.IntervalDays = clonePtr(r.IntervalDays)
	c.Interval = clonePtr(r.Interval)
	c.EndDate = clonePtr(r.EndDate)
	c.NextOccurrence = clonePtr(r.NextOccurrence)
	c.OriginalDueDate = clonePtr(r.OriginalDueDate)
	return c
}

// Advance returns from moved forward by one recurrence step, in UTC.
func (r Recurrence) Advance(from time.Time) (time.Time, error) {
	from = from.UTC()
	if r.IntervalDays != nil {
		if *r.IntervalDays < 1 {
			return time.Time{}, ErrRecurrenceInvalidInterval
		}
		return from.AddDate(0, 0, *r.IntervalDays), nil
	}
	n := 1
	if r.Interval != nil {
		n = *r.Interval
	}
	if n < 1 {
		return time.Time{}, ErrRecurrenceInvalidInterval
	}
	if r.Frequency == nil {
		return time.Time{}, ErrRecurrenceNoSchedule
	}
	switch *r.Frequency {
	case FrequencyDaily:
		return from.AddDate(0, 0, n), nil
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7*n), nil
	case FrequencyMonthly:
		return from.AddDate(0, n, 0), nil
	}
	return time.Time{}, ErrRecurrenceInvalidFreq
}

// Expired reports whether the series has ended at now.
func (r Recurrence) Expired(now time.Time) bool {
	return r.EndDate != nil && !now.Before(*r.EndDate)
}
