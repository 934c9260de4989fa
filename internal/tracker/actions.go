package tracker

import "github.com/KirkDiggler/initiative-tracker/internal/catalog"

// Action is the reducer's input alphabet. The set is closed; only the types
// declared in this file implement it.
type Action interface {
	isAction()
}

// AddMonster tracks a monster type
type AddMonster struct {
	Class catalog.MonsterClass
}

// AddCharacter tracks a player character. Auto-summons for the class are
// created with it unless SkipAutoSummons is set, which restoring a roster
// whose summons are listed explicitly requires.
type AddCharacter struct {
	Name            string
	Class           catalog.CharacterClass
	SkipAutoSummons bool
}

// AddSummon gives the tracked character of CharacterClass a new summon
type AddSummon struct {
	CharacterClass catalog.CharacterClass
	SummonClass    catalog.SummonClass
}

// AddAlly tracks a named ally
type AddAlly struct {
	Name string
}

// DeleteParticipant removes a top-level participant and its summons
type DeleteParticipant struct {
	ID int
}

// DeleteSummon removes one summon from its character
type DeleteSummon struct {
	CharacterID int
	SummonID    int
}

// SetInitiative sets a top-level participant's initiative; NoInitiative clears it
type SetInitiative struct {
	ID    int
	Value int
}

// SetTurnComplete flags a participant or nested summon as done for the round
type SetTurnComplete struct {
	ID    int
	Value bool
}

// ResetForNewRound clears all round-scoped values
type ResetForNewRound struct{}

// BeginRound locks in the turn order for the round
type BeginRound struct{}

// Direction moves a participant within the turn order
type Direction int

const (
	DirectionUp Direction = iota + 1
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "unknown"
	}
}

// Shift swaps a participant with its neighbour, used to break a tie by hand
type Shift struct {
	ID        int
	Direction Direction
}

func (AddMonster) isAction()        {}
func (AddCharacter) isAction()      {}
func (AddSummon) isAction()         {}
func (AddAlly) isAction()           {}
func (DeleteParticipant) isAction() {}
func (DeleteSummon) isAction()      {}
func (SetInitiative) isAction()     {}
func (SetTurnComplete) isAction()   {}
func (ResetForNewRound) isAction()  {}
func (BeginRound) isAction()        {}
func (Shift) isAction()             {}
