// Package scheduler drives the check engine: a scan loop finds due
// monitors, claims each one, and hands it to a worker pool that probes it
// and dispatches alerts on status transitions.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"vigil/alert"
	"vigil/hub"
	"vigil/model"
	"vigil/probe"
	"vigil/store"
)

type Scheduler struct {
	store      store.Store
	executor   *probe.Executor
	dispatcher *alert.Dispatcher
	ws         *hub.Hub // may be nil
	pool       *Pool
	interval   time.Duration
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

func New(st store.Store, ex *probe.Executor, d *alert.Dispatcher, ws *hub.Hub, interval time.Duration, maxConcurrency int) *Scheduler {
	s := &Scheduler{
		store:      st,
		executor:   ex,
		dispatcher: d,
		ws:         ws,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
	s.pool = NewPool(maxConcurrency, s.runCheck)
	return s
}

// Start begins the scan loop. An initial scan runs immediately so newly
// created monitors are not left waiting a full tick.
func (s *Scheduler) Start() {
	log.Printf("scheduler: starting with scan interval %s", s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.ScanOnce(context.Background())

		for {
			select {
			case <-ticker.C:
				s.ScanOnce(context.Background())
			case <-s.stopChan:
				s.pool.Stop()
				return
			}
		}
	}()
}

// Stop shuts the scan loop down and drains the worker pool.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	log.Println("scheduler: stopped")
}

// ScanOnce selects due monitors, atomically claims each, and submits the
// claimed ones to the pool. Returns the count scheduled. A store read failure
// aborts the tick; the next tick retries.
func (s *Scheduler) ScanOnce(ctx context.Context) int {
	now := time.Now().UTC()
	monitors, err := s.store.DueMonitors(ctx, now)
	if err != nil {
		log.Printf("scheduler: load due monitors: %v", err)
		return 0
	}
	if len(monitors) == 0 {
		return 0
	}

	scheduled := 0
	for _, m := range monitors {
		// The claim advances next_check_at past this tick before the probe
		// runs, so an overlapping scan cannot pick the monitor up again. The
		// probe resets the schedule precisely once it completes.
		claimed, err := s.store.ClaimMonitor(ctx, m.ID, now.Add(m.Interval()))
		if err != nil {
			log.Printf("scheduler: claim monitor %s: %v", m.ID, err)
			continue
		}
		if !claimed {
			continue
		}
		s.pool.Submit(m)
		scheduled++
	}
	log.Printf("scheduler: claimed %d of %d due monitors", scheduled, len(monitors))
	return scheduled
}

// runCheck executes one probe and, on a status transition, fans alerts out.
// Failure in one monitor's pipeline never affects another's.
func (s *Scheduler) runCheck(m model.Monitor) {
	ctx := context.Background()

	result, err := s.executor.Execute(ctx, &m)
	if err != nil {
		log.Printf("scheduler: check %s: %v", m.Name, err)
		return
	}

	if s.ws != nil {
		s.ws.Broadcast(hub.Event{
			Type:      "monitor.check",
			MonitorID: m.ID,
			Payload: map[string]interface{}{
				"status":         result.Check.Status,
				"statusCode":     result.Check.StatusCode,
				"responseTimeMs": result.Check.ResponseTimeMs,
				"checkedAt":      result.Check.CheckedAt.Format(time.RFC3339),
			},
		})
	}

	if !result.Transition() {
		return
	}

	evt := alert.Event{
		MonitorID:   m.ID,
		MonitorName: m.Name,
		MonitorURL:  m.URL,
		OldStatus:   result.Previous,
		NewStatus:   result.Check.Status,
		At:          result.Check.CheckedAt,
	}
	attempted, delivered := s.dispatcher.Dispatch(ctx, evt)

	if s.ws != nil {
		s.ws.Broadcast(hub.Event{
			Type:      "monitor.alert",
			MonitorID: m.ID,
			Payload: map[string]interface{}{
				"oldStatus": evt.OldStatus,
				"newStatus": evt.NewStatus,
				"attempted": attempted,
				"delivered": delivered,
			},
		})
	}
}
