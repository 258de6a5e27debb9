package entitlements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddonState(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		raw := `{"recurring":["feature-shop"],"oneTime":["onboarding-pack"],"history":[{"action":"activate","addonIds":["feature-shop"],"timestamp":"2026-01-15T10:00:00Z","monthlyCostDelta":2500}]}`
		state := ParseAddonState(raw)
		assert.Equal(t, []string{"feature-shop"}, state.Recurring)
		assert.Equal(t, []string{"onboarding-pack"}, state.OneTime)
		require.Len(t, state.History, 1)
		assert.Equal(t, AddonActionActivate, state.History[0].Action)
		assert.Equal(t, int64(2500), state.History[0].MonthlyCostDeltaCents)
	})

	t.Run("empty string yields empty state", func(t *testing.T) {
		state := ParseAddonState("")
		assert.Empty(t, state.Recurring)
		assert.Empty(t, state.OneTime)
	})

	t.Run("malformed json fails soft", func(t *testing.T) {
		state := ParseAddonState(`{"recurring": [truncated`)
		require.NotNil(t, state)
		assert.Empty(t, state.Recurring)
		assert.Empty(t, state.OneTime)
	})

	t.Run("missing fields default to empty sets", func(t *testing.T) {
		state := ParseAddonState(`{}`)
		assert.NotNil(t, state.Recurring)
		assert.NotNil(t, state.OneTime)
	})

	t.Run("unknown addon ids are preserved", func(t *testing.T) {
		state := ParseAddonState(`{"recurring":["feature-retired"]}`)
		assert.Equal(t, []string{"feature-retired"}, state.Recurring)

		doc, err := state.Marshal()
		require.NoError(t, err)
		assert.Contains(t, doc, "feature-retired")
	})
}

func TestAddonStateClone(t *testing.T) {
	state := ParseAddonState(`{"recurring":["feature-sms"],"oneTime":[]}`)
	clone := state.Clone()
	clone.Recurring = append(clone.Recurring, "feature-blog")

	assert.Len(t, state.Recurring, 1, "clone must not alias the original")
	assert.True(t, clone.HasRecurring("feature-blog"))
	assert.False(t, state.HasRecurring("feature-blog"))

	var nilState *AddonState
	assert.NotNil(t, nilState.Clone())
	assert.False(t, nilState.HasRecurring("feature-sms"))
	assert.Empty(t, nilState.ActiveAddonIDs())
}
