// ============================================================================
// Eventphase Demo Handlers
// ============================================================================
//
// Package: internal/demo
// File: demo.go
// Purpose: Built-in handler set exercised by `eventctl dispatch`. Not
// part of the dispatcher core — this is the stand-in for "real"
// business handlers a user of the library would register themselves,
// grounded on the teacher's cmd/demo (which seeds a few sample jobs
// for manual inspection rather than exercising every code path).
//
// ============================================================================

package demo

import (
	"fmt"
	"log/slog"

	"github.com/ChuLiYu/eventphase/internal/asyncsim"
	"github.com/ChuLiYu/eventphase/internal/config"
	"github.com/ChuLiYu/eventphase/internal/dispatcher"
	"github.com/ChuLiYu/eventphase/pkg/events"
)

var log = slog.Default()

// Options toggles the failure modes demonstrated by RegisterAll.
type Options struct {
	FailConfigure  bool
	SuspendExecute bool
	AsyncSim       config.AsyncSimConfig
}

// NewSampleEvent builds a demo event with a small illustrative payload.
func NewSampleEvent(eventType events.EventType) *events.Event {
	return events.New(eventType, map[string]any{"source": "eventctl-demo"})
}

// RegisterAll registers one handler per business phase plus the
// Success/Failure/Cancel/Complete listeners against eventType,
// wiring the Execute handler to d so its async suspension can resume
// the same dispatcher that will go on to process the event. The
// returned stop func shuts down the background async simulator and
// must be called once the caller is done dispatching.
func RegisterAll(d *dispatcher.Dispatcher, eventType events.EventType, opts Options) (stop func(), err error) {
	validate, err := events.NewHandlerBuilder(events.PhaseValidate).
		WithPriority(events.PriorityHigh).
		WithHandler(func(ctx events.Context) events.HandlerResult {
			log.Debug("demo validate", "event_id", ctx.Event().ID)
			return events.ResultSuccess
		}).
		Build()
	if err != nil {
		return nil, err
	}

	configure, err := events.NewHandlerBuilder(events.PhaseConfigure).
		WithPriority(events.PriorityNormal).
		WithHandler(func(ctx events.Context) events.HandlerResult {
			if opts.FailConfigure {
				return events.ResultFailure
			}
			return events.ResultSuccess
		}).
		Build()
	if err != nil {
		return nil, err
	}

	provisioner := asyncsim.New(
		maxInt(opts.AsyncSim.Workers, 1),
		maxInt(opts.AsyncSim.BufferSize, 1),
		orDefault(opts.AsyncSim.RequestsPerSecond, 20),
		maxInt(opts.AsyncSim.Burst, 1),
	)
	if err := provisioner.Start(); err != nil {
		return nil, err
	}

	execute, err := events.NewHandlerBuilder(events.PhaseExecute).
		WithPriority(events.PriorityNormal).
		WithHandler(func(ctx events.Context) events.HandlerResult {
			if !opts.SuspendExecute {
				return events.ResultSuccess
			}

			id := ctx.Event().ID
			err := provisioner.Submit(asyncsim.Request{
				ID: string(id),
				OnComplete: func(err error) {
					if err != nil {
						if _, rerr := d.FailEvent(id); rerr != nil {
							log.Warn("demo execute fail-forward dropped", "event_id", id, "error", rerr)
						}
						return
					}
					if _, rerr := d.ResumeEvent(id); rerr != nil {
						log.Warn("demo execute resume dropped", "event_id", id, "error", rerr)
					}
				},
			})
			if err != nil {
				return events.ResultFailure
			}
			return events.ResultWaiting
		}).
		Build()
	if err != nil {
		return nil, err
	}

	cleanup, err := events.NewHandlerBuilder(events.PhaseCleanup).
		WithHandler(func(ctx events.Context) events.HandlerResult {
			log.Debug("demo cleanup", "event_id", ctx.Event().ID)
			return events.ResultSuccess
		}).
		Build()
	if err != nil {
		return nil, err
	}

	success, err := events.NewHandlerBuilder(events.PhaseSuccessListener).
		WithHandler(func(ctx events.Context) events.HandlerResult {
			fmt.Printf("event %s completed successfully\n", ctx.Event().ID)
			return events.ResultSuccess
		}).
		Build()
	if err != nil {
		return nil, err
	}

	failure, err := events.NewHandlerBuilder(events.PhaseFailureListener).
		WithHandler(func(ctx events.Context) events.HandlerResult {
			fmt.Printf("event %s completed with failures\n", ctx.Event().ID)
			return events.ResultSuccess
		}).
		Build()
	if err != nil {
		return nil, err
	}

	cancel, err := events.NewHandlerBuilder(events.PhaseCancelListener).
		WithHandler(func(ctx events.Context) events.HandlerResult {
			fmt.Printf("event %s cancelled\n", ctx.Event().ID)
			return events.ResultSuccess
		}).
		Build()
	if err != nil {
		return nil, err
	}

	complete, err := events.NewHandlerBuilder(events.PhaseCompleteListener).
		WithHandler(func(ctx events.Context) events.HandlerResult {
			log.Info("demo event finished", "event_id", ctx.Event().ID)
			return events.ResultSuccess
		}).
		Build()
	if err != nil {
		return nil, err
	}

	for _, entry := range []*events.HandlerEntry{validate, configure, execute, cleanup, success, failure, cancel, complete} {
		if _, err := d.RegisterHandler(eventType, entry); err != nil {
			return nil, err
		}
	}
	return provisioner.Stop, nil
}

func maxInt(v, floor int) int {
	if v <= 0 {
		return floor
	}
	return v
}

func orDefault(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}
