package models

import (
	"fmt"
	"strings"
)

// StatusFilter selects tasks by completion state.
type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusPending StatusFilter = "pending"
	StatusDone    StatusFilter = "done"
	StatusBlocked StatusFilter = "blocked"
)

// DueFilter selects tasks by due-date window.
type DueFilter string

const (
	DueAny     DueFilter = ""
	DueOverdue DueFilter = "overdue"
	DueSoon    DueFilter = "soon"
	DueWithDue DueFilter = "with-due"
	DueNoDue   DueFilter = "no-due"
)

// RecurrenceFilter selects tasks by recurrence pattern.
type RecurrenceFilter string

const (
	RecurAny          RecurrenceFilter = ""
	RecurDaily        RecurrenceFilter = "daily"
	RecurWeekly       RecurrenceFilter = "weekly"
	RecurMonthly      RecurrenceFilter = "monthly"
	RecurRecurring    RecurrenceFilter = "recurring"
	RecurNonRecurring RecurrenceFilter = "non-recurring"
)

// SortBy orders list output.
type SortBy string

const (
	SortNone     SortBy = ""
	SortPriority SortBy = "priority"
	SortDue      SortBy = "due"
	SortCreated  SortBy = "created"
)

// ParseStatusFilter parses a status filter name; empty means all.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(s)); f {
	case "":
		return StatusAll, nil
	case StatusAll, StatusPending, StatusDone, StatusBlocked:
		return f, nil
	}
	return "", fmt.Errorf("invalid status %q (want all, pending, done or blocked)", s)
}

// ParseDueFilter parses a due filter name.
func ParseDueFilter(s string) (DueFilter, error) {
	switch f := DueFilter(strings.ToLower(s)); f {
	case DueAny, DueOverdue, DueSoon, DueWithDue, DueNoDue:
		return f, nil
	}
	return "", fmt.Errorf("invalid due filter %q (want overdue, soon, with-due or no-due)", s)
}

// ParseRecurrenceFilter parses a recurrence filter name.
func ParseRecurrenceFilter(s string) (RecurrenceFilter, error) {
	switch f := RecurrenceFilter(strings.ToLower(s)); f {
	case RecurAny, RecurDaily, RecurWeekly, RecurMonthly, RecurRecurring, RecurNonRecurring:
		return f, nil
	}
	return "", fmt.Errorf("invalid recurrence filter %q", s)
}

// ParseSortBy parses a sort key.
func ParseSortBy(s string) (SortBy, error) {
	switch f := SortBy(strings.ToLower(s)); f {
	case SortNone, SortPriority, SortDue, SortCreated:
		return f, nil
	}
	return "", fmt.Errorf("invalid sort %q (want priority, due or created)", s)
}

// Matches reports whether the task passes the recurrence filter.
func (f RecurrenceFilter) Matches(t *Task) bool {
	switch f {
	case RecurDaily:
		return t.Recurrence == RecurrenceDaily
	case RecurWeekly:
		return t.Recurrence == RecurrenceWeekly
	case RecurMonthly:
		return t.Recurrence == RecurrenceMonthly
	case RecurRecurring:
		return t.Recurrence != RecurrenceNone
	case RecurNonRecurring:
		return t.Recurrence == RecurrenceNone
	}
	return true
}

// Matches reports whether the task passes the due filter.
func (f DueFilter) Matches(t *Task, today Date, soonDays int) bool {
	switch f {
	case DueOverdue:
		return t.IsOverdue(today)
	case DueSoon:
		return t.IsDueSoon(today, soonDays)
	case DueWithDue:
		return t.DueDate != nil
	case DueNoDue:
		return t.DueDate == nil
	}
	return true
}
