package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/KirkDiggler/initiative-tracker/internal/catalog"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/orchestrators/session"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

const playHelp = `Commands:
  show                                   print the roster
  add character <class> <name...>        track a character
  add monster <class>                    track a monster type
  add summon <character-class> <summon>  give a character a summon
  add ally <name...>                     track an ally
  remove <id>                            stop tracking a participant
  remove-summon <character-id> <id>      dismiss a summon
  init <id> <value>                      set initiative (1-99, "-" clears)
  done <id> [true|false]                 mark a turn complete
  fill                                   roll initiative for everyone without one
  begin                                  sort by initiative and start the round
  reset                                  clear the round for a new one
  up <id> | down <id>                    move a participant to break a tie
  classes [characters|monsters|summons]  list classes
  help                                   show this text
  quit                                   leave
`

func (a *app) state(ctx context.Context) (tracker.State, error) {
	out, err := a.sessions.GetState(ctx, &session.GetStateInput{SessionID: a.cfg.Session})
	if err != nil {
		return tracker.State{}, err
	}
	return out.State, nil
}

func (a *app) dispatch(ctx context.Context, action tracker.Action) (tracker.State, error) {
	out, err := a.sessions.Dispatch(ctx, &session.DispatchInput{
		SessionID: a.cfg.Session,
		Action:    action,
	})
	if err != nil {
		return tracker.State{}, err
	}
	return out.State, nil
}

// execute runs one command line against the open session. It reports
// whether the caller asked to quit.
func (a *app) execute(ctx context.Context, words []string) (bool, error) {
	if len(words) == 0 {
		return false, nil
	}

	current, err := a.state(ctx)
	if err != nil {
		return false, err
	}

	var action tracker.Action
	switch verb, args := strings.ToLower(words[0]), words[1:]; verb {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		a.printf("%s", playHelp)
		return false, nil
	case "show":
		return false, a.render(current)
	case "classes":
		kind := ""
		if len(args) > 0 {
			kind = strings.ToLower(args[0])
		}
		return false, a.renderClasses(kind)
	case "fill":
		out, err := a.sessions.FillInitiatives(ctx, &session.FillInitiativesInput{SessionID: a.cfg.Session})
		if err != nil {
			return false, err
		}
		a.printf("Rolled %d initiative(s).\n", len(out.Rolled))
		return false, a.render(out.State)
	case "add":
		action, err = a.addAction(current, args)
	case "remove":
		var id int
		if id, err = parseID(args, 0); err == nil {
			action = tracker.DeleteParticipant{ID: id}
		}
	case "remove-summon":
		var owner, id int
		if owner, err = parseID(args, 0); err == nil {
			if id, err = parseID(args, 1); err == nil {
				action = tracker.DeleteSummon{CharacterID: owner, SummonID: id}
			}
		}
	case "init":
		action, err = initiativeAction(args)
	case "done":
		action, err = turnCompleteAction(args)
	case "begin":
		action = tracker.BeginRound{}
	case "reset":
		action = tracker.ResetForNewRound{}
	case "up", "down":
		var id int
		if id, err = parseID(args, 0); err == nil {
			dir := tracker.DirectionUp
			if verb == "down" {
				dir = tracker.DirectionDown
			}
			action = tracker.Shift{ID: id, Direction: dir}
		}
	default:
		err = errors.InvalidArgumentf("unknown command %q, try help", words[0])
	}
	if err != nil {
		return false, err
	}

	next, err := a.dispatch(ctx, action)
	if err != nil {
		return false, err
	}
	return false, a.render(next)
}

func parseID(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errors.InvalidArgument("missing participant id")
	}
	id, err := strconv.Atoi(args[i])
	if err != nil || id < 0 {
		return 0, errors.InvalidArgumentf("bad participant id %q", args[i])
	}
	return id, nil
}

func initiativeAction(args []string) (tracker.Action, error) {
	id, err := parseID(args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, errors.InvalidArgument("missing initiative value")
	}
	// anything that is not a number clears the initiative
	value, _ := tracker.ParseInitiative(args[1])
	return tracker.SetInitiative{ID: id, Value: value}, nil
}

func turnCompleteAction(args []string) (tracker.Action, error) {
	id, err := parseID(args, 0)
	if err != nil {
		return nil, err
	}
	done := true
	if len(args) > 1 {
		if done, err = strconv.ParseBool(args[1]); err != nil {
			return nil, errors.InvalidArgumentf("bad turn state %q", args[1])
		}
	}
	return tracker.SetTurnComplete{ID: id, Value: done}, nil
}

// addAction builds an add action, refusing figures that are already on the
// board: one character per class, one monster per class, one summon of each
// kind per character and unique ally names.
func (a *app) addAction(s tracker.State, args []string) (tracker.Action, error) {
	if len(args) == 0 {
		return nil, errors.InvalidArgument("add what? character, monster, summon or ally")
	}
	figures := tracker.ExistingFigures(s)
	kind, args := strings.ToLower(args[0]), args[1:]

	switch kind {
	case "character":
		if len(args) < 2 {
			return nil, errors.InvalidArgument("usage: add character <class> <name...>")
		}
		class, ok := a.catalog.ParseCharacterClass(args[0])
		if !ok {
			return nil, errors.InvalidArgumentf("unknown character class %q", args[0])
		}
		if figures.Characters[class] {
			return nil, errors.AlreadyExistsf("a %s is already tracked", a.characterName(class))
		}
		return tracker.AddCharacter{Name: strings.Join(args[1:], " "), Class: class}, nil

	case "monster":
		if len(args) != 1 {
			return nil, errors.InvalidArgument("usage: add monster <class>")
		}
		class, ok := a.catalog.ParseMonsterClass(args[0])
		if !ok {
			return nil, errors.InvalidArgumentf("unknown monster class %q", args[0])
		}
		if figures.Monsters[class] {
			info, _ := a.catalog.Monster(class)
			return nil, errors.AlreadyExistsf("%s is already tracked", info.Name)
		}
		return tracker.AddMonster{Class: class}, nil

	case "summon":
		if len(args) != 2 {
			return nil, errors.InvalidArgument("usage: add summon <character-class> <summon-class>")
		}
		class, ok := a.catalog.ParseCharacterClass(args[0])
		if !ok {
			return nil, errors.InvalidArgumentf("unknown character class %q", args[0])
		}
		summon, ok := a.catalog.ParseSummonClass(args[1])
		if !ok {
			return nil, errors.InvalidArgumentf("unknown summon class %q", args[1])
		}
		if !summonable(a.catalog.Summonables(class), summon) {
			return nil, errors.InvalidArgumentf("a %s cannot summon that", a.characterName(class))
		}
		if figures.HasSummon(class, summon) {
			return nil, errors.AlreadyExistsf("the %s already has that summon", a.characterName(class))
		}
		return tracker.AddSummon{CharacterClass: class, SummonClass: summon}, nil

	case "ally":
		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			return nil, errors.InvalidArgument("usage: add ally <name...>")
		}
		if figures.Allies[name] {
			return nil, errors.AlreadyExistsf("an ally called %s is already tracked", name)
		}
		return tracker.AddAlly{Name: name}, nil

	default:
		return nil, errors.InvalidArgumentf("cannot add %q: want character, monster, summon or ally", kind)
	}
}

func (a *app) characterName(class catalog.CharacterClass) string {
	if info, ok := a.catalog.Character(class); ok {
		return info.Name
	}
	return fmt.Sprintf("class %d", class)
}

func summonable(options []catalog.SummonClass, class catalog.SummonClass) bool {
	for _, o := range options {
		if o == class {
			return true
		}
	}
	return false
}
