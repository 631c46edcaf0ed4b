package events

import (
	"context"
	"log"
	"time"

	"gigboard/api/internal/store"
)

type applicationLister interface {
	ListApplications(ctx context.Context) ([]store.Application, error)
}

// Watcher periodically scans the application collection and publishes events
// for transitions the API process did not make itself, such as direct SQL
// writes or a migration tool loading records. Deployments with a single
// writer do not need it; transitions made through the service already reach
// the bus at write time and would be reported a second time here.
type Watcher struct {
	lister   applicationLister
	detector *ChangeDetector
	bus      *Bus
	interval time.Duration
	done     chan struct{}
}

func NewWatcher(lister applicationLister, bus *Bus, interval time.Duration) *Watcher {
	return &Watcher{
		lister:   lister,
		detector: NewChangeDetector(),
		bus:      bus,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the scan loop. The first scan only establishes the baseline
// snapshot; events flow from the second scan on.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		w.scan(ctx)
		for {
			select {
			case <-w.done:
				return
			case <-ticker.C:
				w.scan(ctx)
			}
		}
	}()
}

func (w *Watcher) scan(ctx context.Context) {
	apps, err := w.lister.ListApplications(ctx)
	if err != nil {
		log.Printf("events: reconcile scan: %v", err)
		return
	}
	for _, event := range w.detector.Scan(apps) {
		w.bus.Publish(ctx, event)
	}
}

func (w *Watcher) Stop() {
	close(w.done)
}
