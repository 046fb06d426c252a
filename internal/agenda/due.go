package agenda

import (
	"todo/internal/dates"
	"todo/internal/service"
)

// WeekAhead is how many days past today count as "due this week".
const WeekAhead = 7

// Buckets splits open tasks by due date relative to a day.
type Buckets struct {
	Overdue  []service.Task
	Today    []service.Task
	ThisWeek []service.Task
	Later    []service.Task
	NoDue    []service.Task
}

// Urgent returns the number of overdue tasks plus those due today.
func (b Buckets) Urgent() int {
	return len(b.Overdue) + len(b.Today)
}

// ByDue buckets the open tasks relative to today. Each bucket is sorted
// by due date, then name, then ID.
func ByDue(tasks []service.Task, today dates.Date) Buckets {
	var b Buckets

	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if !t.HasDue() {
			b.NoDue = append(b.NoDue, t)
			continue
		}
		switch days := today.DaysUntil(t.Due); {
		case days < 0:
			b.Overdue = append(b.Overdue, t)
		case days == 0:
			b.Today = append(b.Today, t)
		case days <= WeekAhead:
			b.ThisWeek = append(b.ThisWeek, t)
		default:
			b.Later = append(b.Later, t)
		}
	}

	for _, ts := range [][]service.Task{b.Overdue, b.Today, b.ThisWeek, b.Later, b.NoDue} {
		sortTasks(ts, true)
	}
	return b
}
