package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/eventphase/internal/eventctx"
	"github.com/ChuLiYu/eventphase/internal/registry"
	"github.com/ChuLiYu/eventphase/pkg/events"
)

func newTestContext(eventType events.EventType) events.Context {
	ev := events.New(eventType, nil)
	return eventctx.New(ev, registry.New())
}

func mustEntry(t *testing.T, phaseTag events.PhaseTag, result events.HandlerResult) *events.HandlerEntry {
	t.Helper()
	entry, err := events.NewHandlerBuilder(phaseTag).
		WithHandler(func(ctx events.Context) events.HandlerResult { return result }).
		Build()
	require.NoError(t, err)
	return entry
}

func TestValidateAllSuccessContinuesToConfigure(t *testing.T) {
	ctx := newTestContext("order.placed")
	entries := []*events.HandlerEntry{
		mustEntry(t, events.PhaseValidate, events.ResultSuccess),
		mustEntry(t, events.PhaseValidate, events.ResultSuccess),
	}
	p := NewValidate(ctx, entries, nil)

	tr := p.Process()
	assert.Equal(t, events.PhaseResultContinue, tr.Result)
	assert.Equal(t, events.PhaseConfigure, tr.Next)
	assert.False(t, p.HasFailures())
	assert.False(t, p.Cancelled())
}

func TestValidateFailureShortCircuitsRemainingHandlers(t *testing.T) {
	ctx := newTestContext("order.placed")
	ran := false
	failing := mustEntry(t, events.PhaseValidate, events.ResultFailure)
	never, err := events.NewHandlerBuilder(events.PhaseValidate).
		WithHandler(func(ctx events.Context) events.HandlerResult {
			ran = true
			return events.ResultSuccess
		}).
		Build()
	require.NoError(t, err)

	p := NewValidate(ctx, []*events.HandlerEntry{failing, never}, nil)
	tr := p.Process()

	assert.Equal(t, events.PhaseResultFailure, tr.Result)
	assert.Empty(t, tr.Next)
	assert.True(t, p.HasFailures())
	assert.False(t, ran, "handler after a Validate failure must not run")
}

func TestValidateCancelledShortCircuits(t *testing.T) {
	ctx := newTestContext("order.placed")
	entry := mustEntry(t, events.PhaseValidate, events.ResultCancelled)

	p := NewValidate(ctx, []*events.HandlerEntry{entry}, nil)
	tr := p.Process()

	assert.Equal(t, events.PhaseResultCancelled, tr.Result)
	assert.Empty(t, tr.Next)
	assert.True(t, p.Cancelled())
}

// A Waiting result during Validate downgrades the whole phase to a
// failure outcome, since Validate never implements Resume/Fail/Cancel
// and so can never be woken back up (spec.md §4.4).
func TestValidateWaitingDowngradesToFailure(t *testing.T) {
	ctx := newTestContext("order.placed")
	waiting := mustEntry(t, events.PhaseValidate, events.ResultWaiting)
	after := mustEntry(t, events.PhaseValidate, events.ResultSuccess)

	p := NewValidate(ctx, []*events.HandlerEntry{waiting, after}, nil)
	tr := p.Process()

	assert.Equal(t, events.PhaseResultFailure, tr.Result)
	assert.Empty(t, tr.Next)
	assert.True(t, p.HasFailures())
}

func TestValidateResumeFailCancelAreNotSupported(t *testing.T) {
	ctx := newTestContext("order.placed")
	p := NewValidate(ctx, nil, nil)

	_, err := p.Resume()
	assert.ErrorIs(t, err, ErrNotSuspended)
	_, err = p.Fail()
	assert.ErrorIs(t, err, ErrNotSuspended)
	_, err = p.Cancel()
	assert.ErrorIs(t, err, ErrNotSuspended)
}

func TestValidateConditionSkipCountsAsSuccess(t *testing.T) {
	ctx := newTestContext("order.placed")
	entry, err := events.NewHandlerBuilder(events.PhaseValidate).
		WithCondition(func(ev *events.Event, e *events.HandlerEntry) bool { return false }).
		WithHandler(func(ctx events.Context) events.HandlerResult { return events.ResultFailure }).
		Build()
	require.NoError(t, err)

	p := NewValidate(ctx, []*events.HandlerEntry{entry}, nil)
	tr := p.Process()

	assert.Equal(t, events.PhaseResultContinue, tr.Result)
	assert.Equal(t, uint64(0), entry.ExecutionCount())
}

func TestValidateOnExecCalledOncePerInvocation(t *testing.T) {
	ctx := newTestContext("order.placed")
	var seen []events.PhaseTag
	entry := mustEntry(t, events.PhaseValidate, events.ResultSuccess)

	p := NewValidate(ctx, []*events.HandlerEntry{entry}, func(tag events.PhaseTag) {
		seen = append(seen, tag)
	})
	p.Process()

	assert.Equal(t, []events.PhaseTag{events.PhaseValidate}, seen)
}
