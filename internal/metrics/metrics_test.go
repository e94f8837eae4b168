package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/ChuLiYu/eventphase/pkg/events"
)

func TestNewCollector(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.handlersExecuted)
	assert.NotNil(t, collector.phaseDuration)
	assert.NotNil(t, collector.suspensions)
	assert.NotNil(t, collector.outcomes)
}

func TestRecordHandlerExecuted(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	assert.NotPanics(t, func() {
		collector.RecordHandlerExecuted(events.PhaseValidate)
		collector.RecordHandlerExecuted(events.PhaseExecute)
	})
}

func TestRecordPhaseDuration(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	for _, seconds := range []float64{0.001, 0.01, 0.1, 1.0} {
		assert.NotPanics(t, func() {
			collector.RecordPhaseDuration(events.PhaseConfigure, seconds)
		})
	}
}

func TestRecordSuspensionTracksUpAndDown(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	assert.NotPanics(t, func() {
		collector.RecordSuspension(1)
		collector.RecordSuspension(1)
		collector.RecordSuspension(-1)
	})
}

func TestRecordOutcome(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())

	assert.NotPanics(t, func() {
		collector.RecordOutcome(events.OutcomeCompleted)
		collector.RecordOutcome(events.OutcomeCancelled)
		collector.RecordOutcome(events.OutcomeCompletedWithFailures)
	})
}

func TestNewCollectorRegistersAgainstGivenRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
