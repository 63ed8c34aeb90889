package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leadpilot/impressum-cli/internal/model"
)

const subscriberBuffer = 64

// eventBus fans job events out to in-process subscribers. Slow consumers
// lose events rather than blocking writers; the store stays the source
// of truth and a reconnecting consumer re-reads the job.
type eventBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan model.JobEvent
}

func newEventBus() *eventBus {
	return &eventBus{subs: map[string]map[int]chan model.JobEvent{}}
}

func (b *eventBus) subscribe(jobID string) (<-chan model.JobEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan model.JobEvent, subscriberBuffer)
	if b.subs[jobID] == nil {
		b.subs[jobID] = map[int]chan model.JobEvent{}
	}
	b.subs[jobID][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if chans, ok := b.subs[jobID]; ok {
			if ch, ok := chans[id]; ok {
				delete(chans, id)
				close(ch)
			}
			if len(chans) == 0 {
				delete(b.subs, jobID)
			}
		}
	}
	return ch, cancel
}

func (b *eventBus) publish(ev model.JobEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[ev.JobID] {
		select {
		case ch <- ev:
		default:
			zap.L().Debug("store: dropping job event for slow subscriber",
				zap.String("job_id", ev.JobID),
				zap.String("type", string(ev.Type)))
		}
	}
}

// closeAll closes every subscriber channel; called on store Close.
func (b *eventBus) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for jobID, chans := range b.subs {
		for id, ch := range chans {
			delete(chans, id)
			close(ch)
		}
		delete(b.subs, jobID)
	}
}
