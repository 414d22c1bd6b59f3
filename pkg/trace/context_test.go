package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/briar/pkg/models"
)

func TestDisabled(t *testing.T) {
	t.Run("records nothing", func(t *testing.T) {
		Disabled.Record(PhaseNameComparison, "primary name scored")
		Disabled.WithMetadata("query", "john smith")

		assert.False(t, Disabled.Enabled())
		assert.Nil(t, Disabled.ToTrace())
	})

	t.Run("never invokes data callbacks", func(t *testing.T) {
		invoked := false
		Disabled.RecordData(PhaseNameComparison, "scored", func() map[string]any {
			invoked = true
			return map[string]any{"score": 0.95}
		})

		assert.False(t, invoked)
	})

	t.Run("traced runs the operation", func(t *testing.T) {
		ran := false
		err := Disabled.Traced(PhaseAggregation, "aggregate", func() error {
			ran = true
			return nil
		})

		require.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("traced returns the operation error unchanged", func(t *testing.T) {
		opErr := errors.New("comparison failed")
		err := Disabled.Traced(PhaseAggregation, "aggregate", func() error {
			return opErr
		})

		assert.Equal(t, opErr, err)
	})
}

func TestNewContext(t *testing.T) {
	t.Run("records events with phase and description", func(t *testing.T) {
		ctx := NewContext("session-1")
		ctx.Record(PhaseNormalization, "normalized query")
		ctx.Record(PhaseNameComparison, "scored primary name")

		trace := ctx.ToTrace()
		require.NotNil(t, trace)
		require.Len(t, trace.Events, 2)
		assert.Equal(t, "session-1", trace.SessionID)
		assert.Equal(t, PhaseNormalization, trace.Events[0].Phase)
		assert.Equal(t, "normalized query", trace.Events[0].Description)
		assert.Equal(t, PhaseNameComparison, trace.Events[1].Phase)
		assert.False(t, trace.Events[0].Timestamp.IsZero())
	})

	t.Run("record data invokes the callback when enabled", func(t *testing.T) {
		ctx := NewContext("session-2")
		ctx.RecordData(PhaseNameComparison, "scored", func() map[string]any {
			return map[string]any{"score": 0.95, "candidate": "john smith"}
		})

		trace := ctx.ToTrace()
		require.Len(t, trace.Events, 1)
		assert.Equal(t, 0.95, trace.Events[0].Data["score"])
		assert.Equal(t, "john smith", trace.Events[0].Data["candidate"])
	})

	t.Run("traced records duration and success", func(t *testing.T) {
		ctx := NewContext("session-3")
		err := ctx.Traced(PhaseAddressComparison, "compare addresses", func() error {
			return nil
		})

		require.NoError(t, err)
		trace := ctx.ToTrace()
		require.Len(t, trace.Events, 1)
		assert.Equal(t, true, trace.Events[0].Data["success"])
		assert.Contains(t, trace.Events[0].Data, "durationMs")
		assert.NotContains(t, trace.Events[0].Data, "error")
	})

	t.Run("traced records failures and propagates the error", func(t *testing.T) {
		ctx := NewContext("session-4")
		opErr := errors.New("bad date format")
		err := ctx.Traced(PhaseDateComparison, "compare dates", func() error {
			return opErr
		})

		assert.Equal(t, opErr, err)
		trace := ctx.ToTrace()
		require.Len(t, trace.Events, 1)
		assert.Equal(t, false, trace.Events[0].Data["success"])
		assert.Equal(t, "bad date format", trace.Events[0].Data["error"])
	})

	t.Run("metadata and breakdown survive into the trace", func(t *testing.T) {
		ctx := NewContext("session-5")
		ctx.WithMetadata("queryName", "maria garcia")
		ctx.WithMetadata("candidates", 12)
		ctx.SetBreakdown(models.ScoreBreakdown{NameScore: 0.91, TotalWeightedScore: 0.91})

		trace := ctx.ToTrace()
		assert.Equal(t, "maria garcia", trace.Metadata["queryName"])
		assert.Equal(t, 12, trace.Metadata["candidates"])
		require.NotNil(t, trace.Breakdown)
		assert.Equal(t, 0.91, trace.Breakdown.NameScore)
	})

	t.Run("enabled", func(t *testing.T) {
		assert.True(t, NewContext("session-6").Enabled())
	})

	t.Run("to trace snapshots events", func(t *testing.T) {
		ctx := NewContext("session-7")
		ctx.Record(PhaseNormalization, "first")

		before := ctx.ToTrace()
		ctx.Record(PhaseNameComparison, "second")
		after := ctx.ToTrace()

		assert.Len(t, before.Events, 1)
		assert.Len(t, after.Events, 2)
	})
}
