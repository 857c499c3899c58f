package app

import (
	"github.com/rs/zerolog/log"

	"tarasamar/internal/adapters/observability"
)

// Effect names a best-effort write that follows a primary write.
type Effect string

const (
	EffectActivityLog  Effect = "activity_log"
	EffectNotification Effect = "notification"
)

type EffectFailure struct {
	Effect Effect
	Err    error
}

// Outcome is returned alongside a successful primary write. Failures lists
// the secondary effects that did not happen; they never fail the operation.
type Outcome struct {
	Failures []EffectFailure
}

// Degraded reports whether any secondary effect failed.
func (o Outcome) Degraded() bool { return len(o.Failures) > 0 }

func (o Outcome) Failed(e Effect) bool {
	for _, f := range o.Failures {
		if f.Effect == e {
			return true
		}
	}
	return false
}

func (o *Outcome) record(e Effect, err error, ref string) {
	o.Failures = append(o.Failures, EffectFailure{Effect: e, Err: err})
	observability.ObserveSecondaryFailure(string(e))
	log.Warn().Err(err).Str("effect", string(e)).Str("ref", ref).Msg("secondary write failed")
}
