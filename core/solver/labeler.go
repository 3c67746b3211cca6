package solver

// checkSolved decides whether root and every state greedily reachable from
// it have residual at most epsilon. The search is an explicit depth-first
// walk: a state over tolerance marks the pass unsolved and is not expanded,
// but the open stack is still drained. A solved pass labels every closed
// state; otherwise the closed states are backed up, last closed first.
func checkSolved[S comparable](sp space[S], root S, epsilon float64, solved *StateSet[S]) (bool, int) {
	ok := true
	open := newStack[S]()
	closed := newStack[S]()
	if !solved.Has(root) {
		open.push(root)
	}

	for open.len() > 0 {
		s := open.pop()
		closed.push(s)

		if residual(sp, s) > epsilon {
			ok = false
			continue
		}
		a, _, found := greedyAction(sp, s)
		if !found {
			continue
		}
		for _, next := range sp.successors(s, a) {
			if solved.Has(next) || open.has(next) || closed.has(next) {
				continue
			}
			open.push(next)
		}
	}

	if ok {
		for _, s := range closed.items {
			solved.Add(s)
		}
		return true, 0
	}
	backups := 0
	for closed.len() > 0 {
		s := closed.pop()
		sp.setValue(s, bellmanBackup(sp, s))
		backups++
	}
	return false, backups
}
