package syncer

import (
	"context"
	"errors"
	"log"
	"time"
)

const scheduledRunTimeout = 10 * time.Minute

// Scheduler triggers periodic incremental syncs. It never triggers a full
// resync; that path stays behind an explicit request.
type Scheduler struct {
	service  *Service
	interval time.Duration
	stopChan chan struct{}
}

func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	return &Scheduler{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	if s.service == nil || s.interval <= 0 {
		return
	}
	go s.loop()
	log.Printf("Sync scheduler started (every %s)", s.interval)
}

func (s *Scheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), scheduledRunTimeout)
			if _, err := s.service.Run(ctx, ""); err != nil && !errors.Is(err, ErrSyncInProgress) {
				log.Printf("scheduled sync: %v", err)
			}
			cancel()
		}
	}
}
