package counter

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/radityprtama/folio/internal/metrics"
)

// DefaultProbeInterval is how often the store is pinged in the background.
const DefaultProbeInterval = 30 * time.Second

// Prober pings the store on an interval, exports its reachability and logs
// transitions. When the store comes back it writes the seed ahead of the
// next increment.
type Prober struct {
	svc      *Service
	interval time.Duration
	up       atomic.Bool
	known    atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewProber creates a prober for svc. It does nothing for a memory-only service.
func NewProber(svc *Service, interval time.Duration) *Prober {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Prober{
		svc:      svc,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins probing in a goroutine.
func (p *Prober) Start() {
	if p.svc.store == nil {
		close(p.done)
		return
	}
	p.svc.log.Info("starting store prober", zap.Duration("interval", p.interval))
	go p.run()
}

// Stop halts probing and waits for the goroutine to exit.
func (p *Prober) Stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
	<-p.done
}

// Up reports the result of the most recent probe.
func (p *Prober) Up() bool {
	return p.up.Load()
}

func (p *Prober) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Probe immediately on start
	p.probe()

	for {
		select {
		case <-ticker.C:
			p.probe()
		case <-p.stopChan:
			return
		}
	}
}

func (p *Prober) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), p.svc.timeout)
	defer cancel()

	err := p.svc.store.Ping(ctx)
	if err == nil {
		err = p.svc.ensureSeeded(ctx)
	}
	up := err == nil

	wasKnown := p.known.Swap(true)
	was := p.up.Swap(up)
	if up {
		metrics.StoreUp.Set(1)
	} else {
		metrics.StoreUp.Set(0)
	}

	switch {
	case up && (!was || !wasKnown):
		p.svc.log.Info("store reachable", zap.String("key", p.svc.key))
	case !up && (was || !wasKnown):
		p.svc.log.Warn("store unreachable, counter calls will fall back to memory", zap.Error(err))
	}
}
