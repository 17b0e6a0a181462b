package tasks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fentz26/todo/internal/deps"
	"github.com/fentz26/todo/internal/models"
)

// Filter narrows and orders list output. Zero values select everything.
type Filter struct {
	Status     models.StatusFilter
	Priority   models.Priority
	Due        models.DueFilter
	Tag        string
	Project    string
	Recurrence models.RecurrenceFilter
	Sort       models.SortBy
}

// Item is a task together with its derived blocked state.
type Item struct {
	Task    models.Task
	Blocked bool
}

// Status returns the display status: done, blocked or pending.
func (i Item) Status() models.TaskStatus {
	switch {
	case i.Task.IsDone():
		return models.TaskStatusDone
	case i.Blocked:
		return models.TaskStatusBlocked
	default:
		return models.TaskStatusPending
	}
}

// List returns the tasks matching f in stored order unless a sort is given.
func (s *Service) List(f Filter) ([]Item, error) {
	all, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	items, err := s.apply(itemsOf(all), f)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoTasksFound
	}
	return items, nil
}

// Search returns tasks whose text contains query, ignoring case, that
// also match f.
func (s *Service) Search(query string, f Filter) ([]Item, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	all, err := s.repo.Load()
	if err != nil {
		return nil, err
	}

	var matched []Item
	for _, it := range itemsOf(all) {
		if strings.Contains(strings.ToLower(it.Task.Text), q) {
			matched = append(matched, it)
		}
	}
	items, err := s.apply(matched, f)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w for query %q", ErrNoSearchResults, query)
	}
	return items, nil
}

func itemsOf(all []models.Task) []Item {
	items := make([]Item, len(all))
	for i := range all {
		items[i] = Item{Task: all[i], Blocked: deps.ComputeBlocked(&all[i], all)}
	}
	return items
}

func (s *Service) apply(items []Item, f Filter) ([]Item, error) {
	today := s.today()

	items = keep(items, func(it Item) bool {
		switch f.Status {
		case models.StatusPending:
			return !it.Task.IsDone()
		case models.StatusDone:
			return it.Task.IsDone()
		case models.StatusBlocked:
			return it.Blocked
		}
		return true
	})

	if f.Priority != "" {
		items = keep(items, func(it Item) bool { return it.Task.Priority == f.Priority })
	}
	if f.Due != models.DueAny {
		items = keep(items, func(it Item) bool { return f.Due.Matches(&it.Task, today, s.opts.DueSoonDays) })
	}

	if f.Tag != "" {
		tag := strings.ToLower(strings.TrimSpace(f.Tag))
		before := len(items)
		items = keep(items, func(it Item) bool { return it.Task.HasTag(tag) })
		if len(items) == 0 && before > 0 {
			return nil, fmt.Errorf("%w: %q", ErrTagNotFound, f.Tag)
		}
	}

	if f.Project != "" {
		before := len(items)
		items = keep(items, func(it Item) bool { return strings.EqualFold(it.Task.Project, f.Project) })
		if len(items) == 0 && before > 0 {
			return nil, fmt.Errorf("%w: %q", ErrProjectNotFound, f.Project)
		}
	}

	if f.Recurrence != models.RecurAny {
		items = keep(items, func(it Item) bool { return f.Recurrence.Matches(&it.Task) })
	}

	sortItems(items, f.Sort)
	return items, nil
}

func keep(items []Item, pred func(Item) bool) []Item {
	out := items[:0:0]
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func sortItems(items []Item, by models.SortBy) {
	var less func(a, b *models.Task) bool
	switch by {
	case models.SortPriority:
		less = func(a, b *models.Task) bool { return a.Priority.Order() < b.Priority.Order() }
	case models.SortDue:
		less = func(a, b *models.Task) bool {
			switch {
			case a.DueDate != nil && b.DueDate != nil:
				return a.DueDate.Before(*b.DueDate)
			default:
				return a.DueDate != nil && b.DueDate == nil
			}
		}
	case models.SortCreated:
		less = func(a, b *models.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(&items[i].Task, &items[j].Task) })
}

// Count is the number of tasks carrying a tag or belonging to a project.
type Count struct {
	Name    string
	Total   int
	Pending int
}

// Tags returns every tag in use, alphabetically.
func (s *Service) Tags() ([]Count, error) {
	all, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	counts := tally(all, func(t *models.Task) []string { return t.Tags })
	if len(counts) == 0 {
		return nil, ErrNoTagsFound
	}
	return counts, nil
}

// Projects returns every project in use, alphabetically.
func (s *Service) Projects() ([]Count, error) {
	all, err := s.repo.Load()
	if err != nil {
		return nil, err
	}
	counts := tally(all, func(t *models.Task) []string {
		if t.Project == "" {
			return nil
		}
		return []string{t.Project}
	})
	if len(counts) == 0 {
		return nil, ErrNoProjectsFound
	}
	return counts, nil
}

func tally(all []models.Task, keys func(*models.Task) []string) []Count {
	index := make(map[string]int)
	var counts []Count
	for i := range all {
		for _, k := range keys(&all[i]) {
			pos, ok := index[k]
			if !ok {
				pos = len(counts)
				index[k] = pos
				counts = append(counts, Count{Name: k})
			}
			counts[pos].Total++
			if !all[i].IsDone() {
				counts[pos].Pending++
			}
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		return strings.ToLower(counts[i].Name) < strings.ToLower(counts[j].Name)
	})
	return counts
}
