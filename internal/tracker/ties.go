package tracker

// recomputeTies walks the turn order and refreshes every participant's tie
// flags. A tie needs two adjacent participants with the same chosen
// initiative. Participants whose flags are already right are not copied.
func recomputeTies(t *txn) error {
	order := t.s.order
	ordered := make([]Participant, len(order))
	for i, id := range order {
		p, ok := t.s.participants[id]
		if !ok {
			return corrupted(id)
		}
		ordered[i] = p
	}

	tied := func(a, b Participant) bool {
		x, y := a.Common(), b.Common()
		return x.HasInitiative() && y.HasInitiative() && x.Initiative == y.Initiative
	}

	tieExists := false
	for i, p := range ordered {
		prev := i > 0 && tied(ordered[i-1], p)
		next := i < len(ordered)-1 && tied(p, ordered[i+1])
		tieExists = tieExists || prev || next

		b := p.Common()
		if b.TiedWithPrevious == prev && b.TiedWithNext == next {
			continue
		}
		t.put(withBase(p, func(b *Base) {
			b.TiedWithPrevious = prev
			b.TiedWithNext = next
		}))
	}
	t.s.tieExists = tieExists
	return nil
}
