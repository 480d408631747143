// Package prewarm keeps the cache populated for a configured set of SKUs by
// running the pipeline for each on a fixed interval.
package prewarm

import (
	"context"
	"sync"
	"time"

	"github.com/skillsenselab/offerhub/internal/logging"
	"github.com/skillsenselab/offerhub/internal/offers"
)

// Job periodically refreshes configured SKUs through the pipeline.
type Job struct {
	svc      *offers.Service
	skus     []string
	interval time.Duration
	log      *logging.Logger

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewJob creates a prewarm job. It does not start until Start is called.
func NewJob(svc *offers.Service, skus []string, interval time.Duration, log *logging.Logger) *Job {
	return &Job{
		svc:      svc,
		skus:     skus,
		interval: interval,
		log:      log.WithComponent("prewarm"),
		stop:     make(chan struct{}),
	}
}

// Start launches the background loop. A first pass runs immediately so the
// cache is warm before the first client request.
func (j *Job) Start() {
	if len(j.skus) == 0 {
		j.log.Info("no skus configured, prewarm disabled", nil)
		return
	}

	j.wg.Add(1)
	go j.run()
	j.log.Info("prewarm started", map[string]interface{}{
		"skus":     len(j.skus),
		"interval": j.interval.String(),
	})
}

func (j *Job) run() {
	defer j.wg.Done()

	j.refresh()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			j.refresh()
		case <-j.stop:
			return
		}
	}
}

func (j *Job) refresh() {
	start := time.Now()
	for _, sku := range j.skus {
		select {
		case <-j.stop:
			return
		default:
		}
		j.svc.BestOffer(context.Background(), sku)
	}
	j.log.Debug("prewarm pass complete", map[string]interface{}{
		"skus":        len(j.skus),
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// Stop signals the loop to exit and waits for the in-flight pass to finish.
func (j *Job) Stop() {
	j.once.Do(func() { close(j.stop) })
	j.wg.Wait()
}
