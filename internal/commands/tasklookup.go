package commands

import (
	"fmt"

	"todo/internal/agenda"
	"todo/internal/cache"
	"todo/internal/service"
)

// lookupTask resolves ref against the cached snapshot. An exact task ID
// wins; otherwise a number counts open tasks in list order. A non-numeric
// reference unknown to the cache is passed through as an ID.
func lookupTask(snap *cache.Snapshot, ref TaskRef) (service.Task, error) {
	if snap != nil {
		if t, ok := snap.Task(ref.Arg); ok {
			return t, nil
		}
	}
	if ref.Num == 0 {
		return service.Task{ID: ref.Arg}, nil
	}
	if snap == nil {
		return service.Task{}, fmt.Errorf("task number %d: %w", ref.Num, cache.ErrNoCacheAvailable)
	}

	n := 0
	for _, g := range agenda.GroupTasks(snap, snap.Tasks, agenda.Options{HideCompleted: true}) {
		for _, t := range g.Tasks {
			n++
			if n == ref.Num {
				return t, nil
			}
		}
	}
	return service.Task{}, fmt.Errorf("task number out of range: %d: %w", ref.Num, service.ErrNotFound)
}
