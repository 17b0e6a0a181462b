// Package recurrence computes next occurrences of repeating tasks and
// spawns the next instance of a lineage when one is completed.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fentz26/todo/internal/models"
)

// ErrInvalidFrequency is returned for frequencies other than daily, weekly or monthly.
var ErrInvalidFrequency = errors.New("invalid recurrence frequency")

// Parse converts a user-supplied frequency name.
func Parse(s string) (models.Recurrence, error) {
	r := models.Recurrence(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return models.RecurrenceNone, fmt.Errorf("%w: %q (want daily, weekly or monthly)", ErrInvalidFrequency, s)
	}
	return r, nil
}

// NextDate returns the occurrence after d.
//
// Monthly keeps the day of month, clamped to the last day of the next
// month. Each step clamps from the date it is given, so Jan 31 -> Feb 28
// -> Mar 28.
func NextDate(d models.Date, r models.Recurrence) models.Date {
	switch r {
	case models.RecurrenceDaily:
		return d.AddDays(1)
	case models.RecurrenceWeekly:
		return d.AddDays(7)
	case models.RecurrenceMonthly:
		year, month := d.Year(), d.Month()+1
		if month > time.December {
			month = time.January
			year++
		}
		day := d.Day()
		if last := models.DaysIn(year, month); day > last {
			day = last
		}
		return models.NewDate(year, month, day)
	}
	return d
}

// NextDueDate is NextDate for an optional due date. A task without a due
// date yields an instance without one.
func NextDueDate(due *models.Date, r models.Recurrence) *models.Date {
	if due == nil {
		return nil
	}
	next := NextDate(*due, r)
	return &next
}

// SetRecurrence sets the task's frequency. Existing instances and
// parent links are not touched.
func SetRecurrence(task *models.Task, freq models.Recurrence) error {
	if !freq.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, string(freq))
	}
	task.Recurrence = freq
	return nil
}

// ClearRecurrence removes the task's frequency and returns the old one.
func ClearRecurrence(task *models.Task) models.Recurrence {
	old := task.Recurrence
	task.Recurrence = models.RecurrenceNone
	return old
}
