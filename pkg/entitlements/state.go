package entitlements

import (
	"encoding/json"
	"time"
)

// AddonAction is the kind of change recorded in the addon history
type AddonAction string

const (
	AddonActionActivate   AddonAction = "activate"
	AddonActionDeactivate AddonAction = "deactivate"
)

// HistoryEvent records a single addon change
type HistoryEvent struct {
	Action                AddonAction `json:"action"`
	AddonIDs              []string    `json:"addonIds"`
	Timestamp             time.Time   `json:"timestamp"`
	MonthlyCostDeltaCents int64       `json:"monthlyCostDelta"`
}

// AddonState is the per-organization addon document persisted in the
// addons_json column. Recurring holds active monthly addons, OneTime holds
// one-off purchases, History is append-only.
//
// IDs that no longer exist in the catalog are preserved on write but
// ignored by resolution and billing.
type AddonState struct {
	Recurring []string       `json:"recurring"`
	OneTime   []string       `json:"oneTime"`
	History   []HistoryEvent `json:"history,omitempty"`
}

// ParseAddonState decodes a stored addon document. Parsing is fail-soft: an
// empty or malformed document yields the empty state rather than an error,
// so a corrupt addons column never takes the organization down.
func ParseAddonState(raw string) *AddonState {
	state := &AddonState{}
	if raw == "" {
		return state
	}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		return &AddonState{}
	}
	if state.Recurring == nil {
		state.Recurring = []string{}
	}
	if state.OneTime == nil {
		state.OneTime = []string{}
	}
	return state
}

// Marshal encodes the state for persistence
func (s *AddonState) Marshal() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Clone returns an independent copy of the state
func (s *AddonState) Clone() *AddonState {
	if s == nil {
		return &AddonState{}
	}
	out := &AddonState{
		Recurring: append([]string{}, s.Recurring...),
		OneTime:   append([]string{}, s.OneTime...),
		History:   append([]HistoryEvent{}, s.History...),
	}
	return out
}

// HasRecurring reports whether the recurring addon is active
func (s *AddonState) HasRecurring(id string) bool {
	if s == nil {
		return false
	}
	for _, a := range s.Recurring {
		if a == id {
			return true
		}
	}
	return false
}

// HasOneTime reports whether the one-time addon was purchased
func (s *AddonState) HasOneTime(id string) bool {
	if s == nil {
		return false
	}
	for _, a := range s.OneTime {
		if a == id {
			return true
		}
	}
	return false
}

// ActiveAddonIDs returns all active addon IDs, recurring first
func (s *AddonState) ActiveAddonIDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Recurring)+len(s.OneTime))
	out = append(out, s.Recurring...)
	out = append(out, s.OneTime...)
	return out
}
