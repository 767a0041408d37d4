package scheduler

import (
	"log"
	"sync"

	"vigil/model"
)

// Pool runs probe tasks on a bounded set of workers so one slow or hung
// probe never delays the others.
type Pool struct {
	jobs     chan model.Monitor
	run      func(model.Monitor)
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewPool(size int, run func(model.Monitor)) *Pool {
	p := &Pool{
		jobs: make(chan model.Monitor, size*2),
		run:  run,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go func() {
			defer p.wg.Done()
			for m := range p.jobs {
				p.run(m)
			}
		}()
	}
	return p
}

// Submit enqueues a claimed monitor. A full queue drops the task; the
// monitor stays claimed and is picked up again on a later tick.
func (p *Pool) Submit(m model.Monitor) {
	select {
	case p.jobs <- m:
	default:
		log.Printf("scheduler: queue full, skipping check for monitor %s", m.ID)
	}
}

// Stop closes the queue and waits for in-flight probes to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}
