// File: facade/nanoloop.go
// Unified facade layer for the nanoloop runtime.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime aggregates the core components behind a single assembly
// point: interrupt controller, alarm driver over the hardware timer,
// executor, trace journal and control plane, all built from one
// immutable configuration. There is exactly one Runtime per core,
// initialized once before any task is spawned; hosted runs stop by
// cancelling the context handed to Run, firmware never does.

package facade

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/momentics/nanoloop/api"
	"github.com/momentics/nanoloop/control"
	"github.com/momentics/nanoloop/executor"
	"github.com/momentics/nanoloop/irq"
	"github.com/momentics/nanoloop/timerq"
	"github.com/momentics/nanoloop/trace"
)

// Runtime is the assembled firmware core.
type Runtime struct {
	cfg     *control.Config
	plane   *control.Plane
	ctrl    *irq.Controller
	timer   *timerq.Driver
	exec    *executor.Executor
	journal *trace.Journal // nil when tracing is disabled

	mu      sync.Mutex
	started bool
}

// New assembles a runtime from cfg over the given hardware timer.
// The timer must be free-running already; its interrupts are attached
// here.
func New(cfg *control.Config, hw api.HardwareTimer) (*Runtime, error) {
	if cfg == nil {
		cfg = control.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var tracer api.Tracer = api.NopTracer{}
	var journal *trace.Journal
	if cfg.TraceDepth > 0 {
		journal = trace.NewJournal(cfg.TraceDepth)
		tracer = journal
	}

	var idle executor.IdlePolicy = executor.BlockIdle{}
	if cfg.IdlePolicy == "spin" {
		idle = executor.BusyPoll{}
	}

	r := &Runtime{
		cfg:     cfg,
		plane:   control.NewPlane(cfg),
		ctrl:    irq.NewController(cfg.IRQLines),
		timer:   timerq.NewDriver(hw, timerq.WithTracer(tracer)),
		journal: journal,
	}
	r.exec = executor.New(cfg.Capacity,
		executor.WithTracer(tracer),
		executor.WithIdlePolicy(idle),
	)

	r.plane.Metrics().RegisterSource("executor", r.exec.Stats)
	r.plane.Metrics().RegisterSource("timer", r.timer.Stats)
	r.plane.Metrics().RegisterSource("irq", r.ctrl.Stats)
	r.plane.RegisterDebugProbe("alarms_pending", func() any { return r.timer.Pending() })
	r.plane.RegisterDebugProbe("tasks_live", func() any { return r.exec.Len() })
	if journal != nil {
		r.plane.RegisterDebugProbe("trace_dropped", func() any { return journal.Dropped() })
	}
	return r, nil
}

// Spawn places a task into the executor. Main-context only; spawn the
// initial task set before Run.
func (r *Runtime) Spawn(fn api.TaskFunc) (api.TaskHandle, error) {
	return r.exec.Spawn(fn)
}

// Run drives the executor loop and the interrupt dispatcher until ctx
// is cancelled. Cancellation is a clean stop for hosted runs and
// reported as nil.
func (r *Runtime) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return api.ErrAlreadyRunning
	}
	r.started = true
	r.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.ctrl.Dispatch(ctx) })
	g.Go(func() error { return r.exec.Run(ctx) })
	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Now returns the current monotonic instant.
func (r *Runtime) Now() api.Instant { return r.timer.Now() }

// Executor returns the run loop for waker derivation and stats.
func (r *Runtime) Executor() *executor.Executor { return r.exec }

// Timer returns the alarm driver.
func (r *Runtime) Timer() *timerq.Driver { return r.timer }

// IRQ returns the interrupt controller.
func (r *Runtime) IRQ() *irq.Controller { return r.ctrl }

// Control returns the control plane.
func (r *Runtime) Control() api.Control { return r.plane }

// Journal returns the trace journal, nil when tracing is disabled.
func (r *Runtime) Journal() *trace.Journal { return r.journal }
