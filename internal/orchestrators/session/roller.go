package session

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

// rollInitiative rolls one d99. A configured roller takes precedence over
// the toolkit's default dice.
func (o *orchestrator) rollInitiative() (int, error) {
	if o.roller != nil {
		v, err := o.roller.Roll(tracker.MaxInitiative)
		if err != nil {
			return 0, errors.Wrap(err, "failed to roll initiative")
		}
		return v, nil
	}

	roll, err := dice.NewRoll(1, tracker.MaxInitiative)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create initiative roll")
	}
	return int(roll.GetValue()), nil
}
