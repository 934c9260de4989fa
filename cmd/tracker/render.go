package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/KirkDiggler/initiative-tracker/internal/catalog"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func phaseLabel(p tracker.Phase) string {
	if p == tracker.PhaseInitiativesChosen {
		return "initiatives chosen"
	}
	return "choosing initiative"
}

func initiativeLabel(b tracker.Base) string {
	if !b.HasInitiative() {
		return "-"
	}
	return fmt.Sprint(b.Initiative)
}

func tieLabel(b tracker.Base) string {
	switch {
	case b.TiedWithPrevious && b.TiedWithNext:
		return "tie ^v"
	case b.TiedWithPrevious:
		return "tie ^"
	case b.TiedWithNext:
		return "tie v"
	default:
		return ""
	}
}

// classLabel names a character by its class and everything else by its type
func (a *app) classLabel(p tracker.Participant) string {
	if c, ok := p.(*tracker.Character); ok {
		if info, ok := a.catalog.Character(c.Class); ok {
			return info.Name
		}
	}
	return p.GetType()
}

// render prints the roster in turn order with summons under their owner
func (a *app) render(s tracker.State) error {
	ordered, err := s.Ordered()
	if err != nil {
		return err
	}

	a.printf("Round: %s\n", phaseLabel(s.Phase()))
	if len(ordered) == 0 {
		a.printf("Nobody is tracked yet.\n")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tINIT\tDONE\tNAME\tCLASS\tTIE\tICON")
	row := func(b tracker.Base, indent, class, tie string) {
		done := ""
		if b.TurnComplete {
			done = "x"
		}
		icon := catalog.IconPath(a.cfg.IconBase, b.Icon)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s%s\t%s\t%s\t%s\n",
			b.ID, initiativeLabel(b), done, indent, b.Name, class, tie, icon)
	}

	for _, p := range ordered {
		b := p.Common()
		row(b, "", a.classLabel(p), tieLabel(b))

		if c, ok := p.(*tracker.Character); ok {
			for _, sm := range c.Summons {
				row(sm.Common(), "  + ", a.classLabel(sm), "")
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if s.TieExists() {
		a.printf("Ties present: use up/down to break them.\n")
	}
	return nil
}

// renderClasses lists catalog entries of one kind, or all of them
func (a *app) renderClasses(kind string) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	section := func(title string, rows [][2]string) {
		fmt.Fprintf(w, "%s\n", strings.ToUpper(title))
		for _, r := range rows {
			fmt.Fprintf(w, "  %s\t%s\n", r[0], r[1])
		}
	}

	wantAll := kind == ""
	matched := false
	if wantAll || kind == "characters" {
		matched = true
		var rows [][2]string
		for _, c := range a.catalog.CharacterClasses() {
			info, _ := a.catalog.Character(c)
			rows = append(rows, [2]string{fmt.Sprint(int(c)), info.Name + " (" + info.Key + ")"})
		}
		section("characters", rows)
	}
	if wantAll || kind == "monsters" {
		matched = true
		var rows [][2]string
		for _, m := range a.catalog.MonsterClasses() {
			info, _ := a.catalog.Monster(m)
			rows = append(rows, [2]string{fmt.Sprint(int(m)), info.Name + " (" + info.Key + ")"})
		}
		section("monsters", rows)
	}
	if wantAll || kind == "summons" {
		matched = true
		var rows [][2]string
		for _, sm := range a.catalog.SummonClasses() {
			info, _ := a.catalog.Summon(sm)
			rows = append(rows, [2]string{fmt.Sprint(int(sm)), info.Name + " (" + info.Key + ")"})
		}
		section("summons", rows)
	}
	if !matched {
		return errors.InvalidArgumentf("unknown class kind %q: want characters, monsters or summons", kind)
	}
	return w.Flush()
}
