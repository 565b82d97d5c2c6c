package api

import (
	"sync"

	"lpgroute/internal/model"
)

// ProgressBroker fans solver progress snapshots out to websocket subscribers,
// keyed by optimization job id.
type ProgressBroker struct {
	mu   sync.Mutex
	subs map[string]map[chan model.ProgressEvent]struct{}
}

func NewProgressBroker() *ProgressBroker {
	return &ProgressBroker{subs: map[string]map[chan model.ProgressEvent]struct{}{}}
}

func (b *ProgressBroker) Subscribe(jobID string) chan model.ProgressEvent {
	ch := make(chan model.ProgressEvent, 8)
	b.mu.Lock()
	if b.subs[jobID] == nil {
		b.subs[jobID] = map[chan model.ProgressEvent]struct{}{}
	}
	b.subs[jobID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *ProgressBroker) Unsubscribe(jobID string, ch chan model.ProgressEvent) {
	b.mu.Lock()
	if m := b.subs[jobID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, jobID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

// Publish drops the event for any subscriber whose buffer is full; progress
// snapshots are advisory and the next one supersedes this one.
func (b *ProgressBroker) Publish(jobID string, evt model.ProgressEvent) {
	b.mu.Lock()
	for ch := range b.subs[jobID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
