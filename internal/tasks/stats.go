package tasks

import (
	"sort"

	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/models"
)

// ActivityDays is the length of the completion history in Stats.
const ActivityDays = 7

// PriorityStat counts tasks of one priority.
type PriorityStat struct {
	Priority models.Priority
	Pending  int
	Done     int
}

// ProjectStat counts tasks of one project.
type ProjectStat struct {
	Name  string
	Total int
	Done  int
}

// DayActivity is the number of tasks completed on one day.
type DayActivity struct {
	Date      models.Date
	Completed int
}

// Stats summarizes the whole collection.
type Stats struct {
	Total     int
	Completed int
	Pending   int
	Overdue   int
	DueSoon   int
	Blocked   int

	ByPriority []PriorityStat
	ByProject  []ProjectStat
	NoProject  int
	// Activity runs oldest day first and ends today.
	Activity []DayActivity
}

// Percent returns done*100/total, rounded down.
func Percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return done * 100 / total
}

// CompletionPercent is the share of completed tasks.
func (st *Stats) CompletionPercent() int {
	return Percent(st.Completed, st.Total)
}

// Stats computes collection statistics.
func (s *Service) Stats() (*Stats, error) {
	all, err := s.repo.Load()
	if err != nil {
		return nil, err
	}

	now := s.Now()
	today := models.DateOf(now)
	st := &Stats{Total: len(all)}

	byPriority := map[models.Priority]*PriorityStat{}
	byProject := map[string]*ProjectStat{}
	completions := map[models.Date]int{}

	for i := range all {
		t := &all[i]
		if t.IsDone() {
			st.Completed++
			if t.CompletedAt != nil {
				completions[models.DateOf(t.CompletedAt.In(now.Location()))]++
			}
		} else {
			st.Pending++
		}
		if t.IsOverdue(today) {
			st.Overdue++
		}
		if t.IsDueSoon(today, s.opts.DueSoonDays) {
			st.DueSoon++
		}
		if deps.ComputeBlocked(t, all) {
			st.Blocked++
		}

		ps, ok := byPriority[t.Priority]
		if !ok {
			ps = &PriorityStat{Priority: t.Priority}
			byPriority[t.Priority] = ps
		}
		if t.IsDone() {
			ps.Done++
		} else {
			ps.Pending++
		}

		if t.Project == "" {
			st.NoProject++
			continue
		}
		pj, ok := byProject[t.Project]
		if !ok {
			pj = &ProjectStat{Name: t.Project}
			byProject[t.Project] = pj
		}
		pj.Total++
		if t.IsDone() {
			pj.Done++
		}
	}

	for _, p := range []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		if ps, ok := byPriority[p]; ok {
			st.ByPriority = append(st.ByPriority, *ps)
		}
	}
	for _, pj := range byProject {
		st.ByProject = append(st.ByProject, *pj)
	}
	sort.Slice(st.ByProject, func(i, j int) bool { return st.ByProject[i].Name < st.ByProject[j].Name })

	for i := ActivityDays - 1; i >= 0; i-- {
		day := today.AddDays(-i)
		st.Activity = append(st.Activity, DayActivity{Date: day, Completed: completions[day]})
	}
	return st, nil
}
