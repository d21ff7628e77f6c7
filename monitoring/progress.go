package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/upsilonsoc/tracing"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// progressTracer moves a bar forward as the tasks of a component start and
// end.
type progressTracer struct {
	bar *ProgressBar
}

func (t progressTracer) StartTask(_ tracing.Task) {
	t.bar.IncrementInProgress(1)
}

func (t progressTracer) StepTask(_ tracing.Task) {}

func (t progressTracer) EndTask(_ tracing.Task) {
	t.bar.MoveInProgressToFinished(1)
}

// TrackProgress creates a bar that counts the tasks of the component.
func (m *Monitor) TrackProgress(
	comp tracing.NamedHookable,
	total uint64,
) *ProgressBar {
	bar := m.CreateProgressBar(comp.Name(), total)
	tracing.CollectTrace(comp, progressTracer{bar: bar})

	return bar
}
