// ============================================================================
// Eventphase Dispatch Scenario Suite
// ============================================================================
//
// Package: test/integration
// File: dispatch_test.go
// Purpose: End-to-end dispatch scenarios driven purely through the
// public internal/dispatcher + internal/registry + pkg/events surface,
// one test per documented phase-sequence exception.
//
// ============================================================================

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/eventphase/internal/dispatcher"
	"github.com/ChuLiYu/eventphase/internal/registry"
	"github.com/ChuLiYu/eventphase/pkg/events"
)

func newHandler(t *testing.T, tag events.PhaseTag, fn events.HandlerFunc) *events.HandlerEntry {
	t.Helper()
	entry, err := events.NewHandlerBuilder(tag).WithHandler(fn).Build()
	require.NoError(t, err)
	return entry
}

func constant(result events.HandlerResult) events.HandlerFunc {
	return func(ctx events.Context) events.HandlerResult { return result }
}

// Every phase succeeds; each handler runs exactly once in order.
func TestAllPhasesSucceedSequentially(t *testing.T) {
	reg := registry.New()
	d := dispatcher.New(reg)

	var validateRuns, configureRuns, executeRuns, cleanupRuns, successRuns, completeRuns int
	countThenSucceed := func(counter *int) events.HandlerFunc {
		return func(ctx events.Context) events.HandlerResult {
			*counter++
			return events.ResultSuccess
		}
	}

	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseValidate, countThenSucceed(&validateRuns)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseConfigure, countThenSucceed(&configureRuns)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseExecute, countThenSucceed(&executeRuns)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseCleanup, countThenSucceed(&cleanupRuns)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseSuccessListener, countThenSucceed(&successRuns)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseCompleteListener, countThenSucceed(&completeRuns)))

	ev := events.New("order.placed", nil)
	outcome, handle, err := d.Dispatch(ev)

	require.NoError(t, err)
	assert.Equal(t, events.OutcomeCompleted, outcome)
	assert.Nil(t, handle)
	assert.True(t, ev.IsCompleted)
	assert.False(t, ev.HasFailures)
	for _, n := range []int{validateRuns, configureRuns, executeRuns, cleanupRuns, successRuns, completeRuns} {
		assert.Equal(t, 1, n)
	}
}

// A Validate failure short-circuits: no Configure/Execute/Cleanup
// handler runs, and the Failure/Complete listeners fire.
func TestValidateFailureSkipsLaterPhases(t *testing.T) {
	reg := registry.New()
	d := dispatcher.New(reg)

	laterRan := false
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseValidate, constant(events.ResultFailure)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseConfigure, func(ctx events.Context) events.HandlerResult {
		laterRan = true
		return events.ResultSuccess
	}))
	var failureRan, completeRan bool
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseFailureListener, func(ctx events.Context) events.HandlerResult {
		failureRan = true
		return events.ResultSuccess
	}))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseCompleteListener, func(ctx events.Context) events.HandlerResult {
		completeRan = true
		return events.ResultSuccess
	}))

	ev := events.New("order.placed", nil)
	outcome, _, err := d.Dispatch(ev)

	require.NoError(t, err)
	assert.Equal(t, events.OutcomeCompletedWithFailures, outcome)
	assert.False(t, laterRan)
	assert.True(t, failureRan)
	assert.True(t, completeRan)
}

// A Configure failure still runs Cleanup, then reports failure.
func TestConfigureFailureStillRunsCleanup(t *testing.T) {
	reg := registry.New()
	d := dispatcher.New(reg)

	cleanupRan := false
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseValidate, constant(events.ResultSuccess)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseConfigure, constant(events.ResultFailure)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseCleanup, func(ctx events.Context) events.HandlerResult {
		cleanupRan = true
		return events.ResultSuccess
	}))

	ev := events.New("order.placed", nil)
	outcome, _, err := d.Dispatch(ev)

	require.NoError(t, err)
	assert.Equal(t, events.OutcomeCompletedWithFailures, outcome)
	assert.True(t, cleanupRan)
}

// Cancellation during Execute detours to Cleanup, then reports
// Cancelled (not Completed).
func TestExecuteCancelledDetoursToCleanup(t *testing.T) {
	reg := registry.New()
	d := dispatcher.New(reg)

	cleanupRan, cancelListenerRan, successListenerRan := false, false, false
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseValidate, constant(events.ResultSuccess)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseConfigure, constant(events.ResultSuccess)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseExecute, constant(events.ResultCancelled)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseCleanup, func(ctx events.Context) events.HandlerResult {
		cleanupRan = true
		return events.ResultSuccess
	}))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseCancelListener, func(ctx events.Context) events.HandlerResult {
		cancelListenerRan = true
		return events.ResultSuccess
	}))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseSuccessListener, func(ctx events.Context) events.HandlerResult {
		successListenerRan = true
		return events.ResultSuccess
	}))

	ev := events.New("order.placed", nil)
	outcome, _, err := d.Dispatch(ev)

	require.NoError(t, err)
	assert.Equal(t, events.OutcomeCancelled, outcome)
	assert.True(t, cleanupRan)
	assert.True(t, cancelListenerRan)
	assert.False(t, successListenerRan)
	assert.True(t, ev.IsCancelled)
}

// Execute suspends, the caller resumes the handle out-of-band, and
// the event runs to completion.
func TestSuspendThenResumeReachesCompletion(t *testing.T) {
	reg := registry.New()
	d := dispatcher.New(reg)

	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseValidate, constant(events.ResultSuccess)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseConfigure, constant(events.ResultSuccess)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseExecute, constant(events.ResultWaiting)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseCleanup, constant(events.ResultSuccess)))

	ev := events.New("order.placed", nil)
	outcome, handle, err := d.Dispatch(ev)
	require.NoError(t, err)
	require.Equal(t, events.OutcomeSuspended, outcome)
	require.NotNil(t, handle)
	assert.False(t, ev.IsCompleted)
	assert.True(t, ev.IsWaiting)

	outcome, err = handle.Resume()
	require.NoError(t, err)
	assert.Equal(t, events.OutcomeCompleted, outcome)
	assert.True(t, ev.IsCompleted)
	assert.False(t, ev.IsWaiting)
}

// A Configure handler suspends the event; resuming the handle records
// it as Success and the event goes on through Execute and Cleanup to
// completion without failures. The resume-before-Waiting ordering is
// covered at phase level by TestConfigureEarlyResumeRace.
func TestConfigureSuspendThenResumeThroughTheFullDispatcher(t *testing.T) {
	reg := registry.New()
	d := dispatcher.New(reg)

	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseValidate, constant(events.ResultSuccess)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseConfigure, constant(events.ResultWaiting)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseExecute, constant(events.ResultSuccess)))
	_, _ = d.RegisterHandler("order.placed", newHandler(t, events.PhaseCleanup, constant(events.ResultSuccess)))

	ev := events.New("order.placed", nil)
	outcome, handle, err := d.Dispatch(ev)
	require.NoError(t, err)
	require.Equal(t, events.OutcomeSuspended, outcome)
	require.NotNil(t, handle)

	outcome, err = handle.Resume()
	require.NoError(t, err)
	assert.Equal(t, events.OutcomeCompleted, outcome)
	assert.False(t, ev.HasFailures)
}

func TestDispatchRejectsNilHandlerEntry(t *testing.T) {
	d := dispatcher.New(registry.New())
	_, err := d.RegisterHandler("order.placed", nil)
	assert.Error(t, err)
}

func TestUnregisteredHandlerNeverRuns(t *testing.T) {
	reg := registry.New()
	d := dispatcher.New(reg)

	ran := false
	id, err := d.RegisterHandler("order.placed", newHandler(t, events.PhaseValidate, func(ctx events.Context) events.HandlerResult {
		ran = true
		return events.ResultSuccess
	}))
	require.NoError(t, err)
	assert.True(t, d.UnregisterHandler(id))

	_, _, err = d.Dispatch(events.New("order.placed", nil))
	require.NoError(t, err)
	assert.False(t, ran)
}
