package core

import (
	"context"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Task priorities, highest first: input and sensing, then alerting, then
// the cosmetic indicators. Goroutines have no priority, so these fix start
// order and are reported on the console.
const (
	PriorityButton      = 6
	PrioritySampler     = 4
	PriorityAggregator  = 3
	PriorityConsole     = 3
	PriorityCoordinator = 2
	PriorityModeLED     = 2
	PriorityHeartbeat   = 1
	PriorityRelay       = 1
)

// Task is one long-running unit of work.
type Task struct {
	Name     string
	Priority int
	Run      func(ctx context.Context) error

	// Collaborator marks an external collaborator (HTTP console, MQTT).
	// Its failure is logged and does not stop the core tasks.
	Collaborator bool
}

// SortByPriority orders tasks by descending priority, keeping the given
// order among equals.
func SortByPriority(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// RunTasks starts tasks in priority order and waits for all of them.
// The first core task to fail cancels the rest and its error is returned.
func RunTasks(ctx context.Context, tasks []Task) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range SortByPriority(tasks) {
		log.Printf("starting task %s (priority %d)", t.Name, t.Priority)
		g.Go(func() error {
			err := t.Run(ctx)
			if err != nil && t.Collaborator {
				log.Printf("%s stopped: %v", t.Name, err)
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
