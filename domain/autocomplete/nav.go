package autocomplete

// Phase is the visible state of the suggestion list.
type Phase int

const (
	Closed Phase = iota
	OpenNoSelection
	OpenSelection
)

func (p Phase) String() string {
	switch p {
	case Closed:
		return "closed"
	case OpenNoSelection:
		return "open-no-selection"
	case OpenSelection:
		return "open-selection"
	}
	return "unknown"
}

// NoSelection is the active index when nothing is highlighted.
const NoSelection = -1

// Nav tracks the highlighted row of a list of Total entries.
// Active stays within [NoSelection, Total-1].
type Nav struct {
	Active int
	Total  int
}

// NewNav returns a Nav over total entries with nothing highlighted.
func NewNav(total int) Nav {
	if total < 0 {
		total = 0
	}
	return Nav{Active: NoSelection, Total: total}
}

// Down moves the highlight one row down, stopping at the last row.
func (n *Nav) Down() {
	if n.Active < n.Total-1 {
		n.Active++
	}
}

// Up moves the highlight one row up, stopping at NoSelection.
func (n *Nav) Up() {
	if n.Active > NoSelection {
		n.Active--
	}
}

// Reset replaces the list length and clears the highlight.
func (n *Nav) Reset(total int) {
	*n = NewNav(total)
}

// Selected reports whether a row is highlighted.
func (n Nav) Selected() bool {
	return n.Active > NoSelection
}
