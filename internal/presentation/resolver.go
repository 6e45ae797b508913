package presentation

// slot identifies a range by position only; style is not part of identity.
type slot struct {
	offset int
	length int
}

// pendingRanges tracks the ranges committed during one presentation pass
// together with the priority each slot was last won with.
type pendingRanges struct {
	winners map[slot]int
}

func (p *pendingRanges) reset() {
	clear(p.winners)
}

// admit decides whether a candidate may be written into sink and records it
// when it may. An empty sink starts a new pass. A candidate for an occupied
// slot wins only with a numerically lower priority.
func (p *pendingRanges) admit(sink Sink, s slot, priority int) bool {
	if p.winners == nil {
		p.winners = make(map[slot]int)
	}
	if sink.Len() == 0 {
		p.reset()
	} else if stored, ok := p.winners[s]; ok && priority >= stored {
		return false
	}
	p.winners[s] = priority
	return true
}
