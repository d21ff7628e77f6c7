package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/upsilonsoc/sim"
)

type interval struct {
	start, end sim.VTimeInSec
}

// BusyTimeTracer traces the time that a domain spends on a kind of task. When
// tasks overlap, the overlapped time is only counted once, so the busy time of
// an arbiter is the time its shared resource is occupied.
type BusyTimeTracer struct {
	lock          sync.Mutex
	timeTeller    sim.TimeTeller
	filter        TaskFilter
	inflightTasks map[string]sim.VTimeInSec
	completed     []interval
}

// NewBusyTimeTracer creates a new BusyTimeTracer. A nil filter accepts every
// task.
func NewBusyTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	return &BusyTimeTracer{
		timeTeller:    timeTeller,
		filter:        filter,
		inflightTasks: make(map[string]sim.VTimeInSec),
	}
}

// BusyTime returns the union length of all the completed tasks.
func (t *BusyTimeTracer) BusyTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	intervals := make([]interval, len(t.completed))
	copy(intervals, t.completed)

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	busy := sim.VTimeInSec(0)
	var curr *interval

	for i := range intervals {
		iv := intervals[i]

		if curr != nil && iv.start <= curr.end {
			curr.end = max(curr.end, iv.end)
			continue
		}

		if curr != nil {
			busy += curr.end - curr.start
		}

		curr = &iv
	}

	if curr != nil {
		busy += curr.end - curr.start
	}

	return busy
}

// TerminateAllTasks will mark all the tasks as completed.
func (t *BusyTimeTracer) TerminateAllTasks(now sim.VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for id, start := range t.inflightTasks {
		t.completed = append(t.completed, interval{start: start, end: now})
		delete(t.inflightTasks, id)
	}
}

// StartTask records the task start time
func (t *BusyTimeTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	t.inflightTasks[task.ID] = t.timeTeller.CurrentTime()
}

// StepTask does nothing
func (t *BusyTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask records the end of the task
func (t *BusyTimeTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	t.completed = append(t.completed,
		interval{start: start, end: t.timeTeller.CurrentTime()})
	delete(t.inflightTasks, task.ID)
}
