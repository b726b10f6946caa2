package stress

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/go-syncscope/barrier"
	"github.com/joeycumines/go-syncscope/lanes"
	"github.com/joeycumines/go-syncscope/latch"
	"github.com/joeycumines/go-syncscope/semaphore"
	"github.com/joeycumines/go-syncscope/waitnotify"
	"github.com/joeycumines/logiface"
	"golang.org/x/sync/errgroup"
)

// scenario is the state of one run, shared by its workers.
type scenario struct {
	cfg      Config
	logger   *logiface.Logger[logiface.Event]
	opts     []waitnotify.Option
	device   *lanes.Device
	failures failures
	ops      atomic.Int64
}

// Run executes the scenario described by cfg. The returned error is non-nil
// only if the scenario could not be run. Invariant failures are reported in
// the Result.
//
// Cancelling ctx stops host and futex workers between iterations. Lane
// workers always run to completion, since they may not block.
func Run(ctx context.Context, cfg Config, logger *logiface.Logger[logiface.Event]) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scope, _ := syncscope.ParseScope(cfg.Scope)

	s := &scenario{cfg: cfg, logger: logger}
	switch cfg.Platform {
	case PlatformLane:
		device, err := lanes.NewDevice(cfg.Groups, cfg.Workers/cfg.Groups, lanes.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		s.device = device
		s.opts = device.EngineOptions(scope)
	case PlatformFutex:
		p, err := waitnotify.NewFutexPlatform()
		if err != nil {
			return nil, err
		}
		s.opts = []waitnotify.Option{waitnotify.WithPlatform(p), waitnotify.WithScope(scope), waitnotify.WithLogger(logger)}
	default:
		s.opts = []waitnotify.Option{waitnotify.WithPlatform(waitnotify.HostPlatform{}), waitnotify.WithScope(scope), waitnotify.WithLogger(logger)}
	}
	s.opts = append(s.opts,
		waitnotify.WithMetrics(cfg.Metrics),
		waitnotify.WithName(cfg.Primitive),
		waitnotify.WithSlowWaitThreshold(time.Second),
	)

	logger.Info().
		Str(`primitive`, cfg.Primitive).
		Str(`platform`, cfg.Platform).
		Str(`scope`, cfg.Scope).
		Int(`workers`, cfg.Workers).
		Int(`iterations`, cfg.Iterations).
		Log(`stress: starting`)

	var (
		engine *waitnotify.Engine
		err    error
	)
	start := time.Now()
	switch cfg.Primitive {
	case PrimitiveSemaphore:
		engine, err = s.semaphore(ctx)
	case PrimitiveLatch:
		engine, err = s.latch(ctx)
	case PrimitiveBarrier:
		engine, err = s.barrier(ctx)
	}
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	r := &Result{
		Config:     cfg,
		Elapsed:    elapsed,
		Operations: s.ops.Load(),
		Metrics:    engine.Metrics(),
	}
	r.Failures, r.Err = s.failures.result()

	logger.Info().
		Dur(`elapsed`, elapsed).
		Int64(`operations`, r.Operations).
		Int64(`failures`, r.Failures).
		Log(`stress: finished`)
	return r, nil
}

// launch runs fn on every worker, on lanes or goroutines per the platform.
func (s *scenario) launch(ctx context.Context, fn func(ctx context.Context, worker int) error) error {
	if s.device != nil {
		return s.device.Launch(func(lane *lanes.Lane) error {
			return fn(context.Background(), lane.ID())
		})
	}
	g, ctx := errgroup.WithContext(ctx)
	for worker := 0; worker < s.cfg.Workers; worker++ {
		g.Go(func() error { return fn(ctx, worker) })
	}
	return g.Wait()
}

// semaphore checks that no more than Permits workers ever hold the semaphore.
func (s *scenario) semaphore(ctx context.Context) (*waitnotify.Engine, error) {
	sem, err := semaphore.New(s.cfg.Permits, s.cfg.Permits, s.opts...)
	if err != nil {
		return nil, err
	}
	var holders atomic.Int64
	err = s.launch(ctx, func(ctx context.Context, worker int) error {
		for i := 0; i < s.cfg.Iterations; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			sem.Acquire()
			if n := holders.Add(1); n > s.cfg.Permits {
				s.failures.add(`worker %d: %d holders exceeds %d permits`, worker, n, s.cfg.Permits)
			}
			holders.Add(-1)
			sem.Release(1)
			s.ops.Add(1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if c := sem.Count(); c != s.cfg.Permits {
		s.failures.add(`final count %d, expected %d`, c, s.cfg.Permits)
	}
	return sem.Engine(), nil
}

// latch checks that no worker passes a latch before every worker arrived.
func (s *scenario) latch(ctx context.Context) (*waitnotify.Engine, error) {
	latches := make([]*latch.Latch, s.cfg.Iterations)
	arrived := make([]atomic.Int64, s.cfg.Iterations)
	for i := range latches {
		l, err := latch.New(int64(s.cfg.Workers), s.opts...)
		if err != nil {
			return nil, err
		}
		latches[i] = l
	}
	err := s.launch(ctx, func(ctx context.Context, worker int) error {
		for i, l := range latches {
			if err := ctx.Err(); err != nil {
				// leave the remaining latches open for the others
				for _, l := range latches[i:] {
					l.CountDown(1)
				}
				return err
			}
			arrived[i].Add(1)
			l.ArriveAndWait(1)
			if n := arrived[i].Load(); n != int64(s.cfg.Workers) {
				s.failures.add(`worker %d: passed latch %d with %d of %d arrivals`, worker, i, n, s.cfg.Workers)
			}
			s.ops.Add(1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return latches[0].Engine(), nil
}

// barrier checks that every phase completes exactly once, after every worker
// arrived, and before any worker proceeds.
func (s *scenario) barrier(ctx context.Context) (*waitnotify.Engine, error) {
	var (
		arrived     = make([]atomic.Int64, s.cfg.Iterations)
		completions atomic.Int64
		b           *barrier.Barrier
	)
	b, err := barrier.New(int64(s.cfg.Workers), func() {
		phase := b.Phase()
		if int(phase) < len(arrived) {
			if n := arrived[phase].Load(); n != int64(s.cfg.Workers) {
				s.failures.add(`phase %d completed with %d of %d arrivals`, phase, n, s.cfg.Workers)
			}
		}
		completions.Add(1)
	}, s.opts...)
	if err != nil {
		return nil, err
	}
	err = s.launch(ctx, func(ctx context.Context, worker int) error {
		for i := 0; i < s.cfg.Iterations; i++ {
			if err := ctx.Err(); err != nil {
				b.ArriveAndDrop()
				return err
			}
			arrived[i].Add(1)
			b.ArriveAndWait()
			if phase := b.Phase(); phase < uint32(i+1) {
				s.failures.add(`worker %d: left phase %d while barrier at phase %d`, worker, i, phase)
			}
			s.ops.Add(1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if n := completions.Load(); n != int64(s.cfg.Iterations) {
		s.failures.add(`%d phases completed, expected %d`, n, s.cfg.Iterations)
	}
	return b.Engine(), nil
}
