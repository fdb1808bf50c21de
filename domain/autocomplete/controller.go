package autocomplete

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/zerovacancy/zerovacancy/domain/locations"
)

// MinQueryLength mirrors the filter's lower bound so short input never
// reaches the filter.
const MinQueryLength = locations.MinQueryLength

// Key names follow DOM KeyboardEvent.key values.
type Key string

const (
	KeyArrowDown Key = "ArrowDown"
	KeyArrowUp   Key = "ArrowUp"
	KeyEnter     Key = "Enter"
	KeyEscape    Key = "Escape"
)

// FilterFunc returns grouped suggestions for a query.
type FilterFunc func(query string) locations.GroupedSuggestions

// SelectFunc receives a committed suggestion and the text written into the input.
type SelectFunc func(loc locations.Location, text string)

// State is a snapshot of the input. Active is NoSelection or an index into
// Suggestions in navigation order.
type State struct {
	Text        string
	Suggestions locations.GroupedSuggestions
	Visible     bool
	Loading     bool
	Active      int
}

// Phase derives the keyboard state from the snapshot.
func (s State) Phase() Phase {
	switch {
	case !s.Visible:
		return Closed
	case s.Active == NoSelection:
		return OpenNoSelection
	default:
		return OpenSelection
	}
}

// ActiveLocation returns the highlighted suggestion.
func (s State) ActiveLocation() (locations.Location, bool) {
	if !s.Visible {
		return locations.Location{}, false
	}
	return s.Suggestions.At(s.Active)
}

// Option configures a Controller.
type Option func(*Controller)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithAfterFunc replaces time.AfterFunc, letting tests fire timers by hand.
func WithAfterFunc(f AfterFunc) Option {
	return func(c *Controller) { c.after = f }
}

// WithOnSelect registers the commit callback.
func WithOnSelect(f SelectFunc) Option {
	return func(c *Controller) { c.onSelect = f }
}

// Controller is the location input: it owns the text, the debounced filter
// call, the suggestion list and its highlight. All methods are safe for
// concurrent use; subscribers are called without the lock held, in
// subscription order.
type Controller struct {
	mu       sync.Mutex
	filter   FilterFunc
	delay    time.Duration
	after    AfterFunc
	onSelect SelectFunc
	debounce *Debouncer

	state State
	nav   Nav

	subs   map[uint64]func(State)
	order  []uint64
	nextID uint64
	closed bool

	// version numbers snapshots under mu; delivered is the newest one
	// handed to subscribers, guarded by notifyMu.
	version   uint64
	delivered uint64

	// notifyMu keeps subscriber calls from overlapping.
	notifyMu sync.Mutex
}

// NewController creates a controller over filter.
func NewController(filter FilterFunc, opts ...Option) *Controller {
	c := &Controller{
		filter: filter,
		delay:  DefaultDelay,
		subs:   make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.debounce = NewDebouncer(c.delay, c.after)
	c.state = State{Suggestions: locations.Empty(), Active: NoSelection}
	c.nav = NewNav(0)
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Input records a keystroke. Text shorter than MinQueryLength clears and hides
// suggestions at once; anything longer starts the debounce window.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Text = text

	if !qualifies(text) {
		c.debounce.Cancel()
		c.clearLocked()
		s, v := c.snapshotLocked()
		c.mu.Unlock()
		c.publish(s, v)
		return
	}

	c.state.Loading = true
	c.debounce.Trigger(c.fire)
	s, v := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(s, v)
}

// fire runs when the debounce window closes and filters the latest text.
func (c *Controller) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	text := c.state.Text
	c.mu.Unlock()

	var res locations.GroupedSuggestions
	if qualifies(text) {
		res = c.filter(strings.TrimSpace(text))
	}

	c.mu.Lock()
	// Input changed while the filter ran; a newer timer owns the result.
	if c.closed || c.state.Text != text {
		c.mu.Unlock()
		return
	}
	if qualifies(text) {
		c.state.Suggestions = res
		c.state.Visible = true
		c.state.Loading = false
		c.nav.Reset(res.Len())
		c.state.Active = c.nav.Active
	} else {
		c.clearLocked()
	}
	s, v := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(s, v)
}

// Key handles a navigation key and reports whether it was consumed. Keys
// are ignored while the list is hidden.
func (c *Controller) Key(k Key) bool {
	c.mu.Lock()
	if c.closed || !c.state.Visible {
		c.mu.Unlock()
		return false
	}

	var (
		committed bool
		loc       locations.Location
	)
	switch k {
	case KeyArrowDown:
		c.nav.Down()
		c.state.Active = c.nav.Active
	case KeyArrowUp:
		c.nav.Up()
		c.state.Active = c.nav.Active
	case KeyEnter:
		if l, ok := c.state.Suggestions.At(c.nav.Active); ok {
			loc = l
			committed = true
			c.state.Text = selectionText(c.state.Suggestions, c.nav.Active)
		}
		c.hideLocked()
	case KeyEscape:
		c.hideLocked()
	default:
		c.mu.Unlock()
		return false
	}

	s, v := c.snapshotLocked()
	onSelect := c.onSelect
	c.mu.Unlock()

	c.publish(s, v)
	if committed && onSelect != nil {
		onSelect(loc, s.Text)
	}
	return true
}

// ClickOutside hides the list without committing.
func (c *Controller) ClickOutside() {
	c.mu.Lock()
	if c.closed || !c.state.Visible {
		c.mu.Unlock()
		return
	}
	c.hideLocked()
	s, v := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(s, v)
}

// Subscribe registers fn for every state change. The returned function
// removes it and may be called more than once.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return func() {}
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.order = append(c.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			for i, v := range c.order {
				if v == id {
					c.order = append(c.order[:i], c.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Close tears the input down: the pending timer is stopped and every
// subscriber is dropped. Later calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.debounce.Stop()
	c.subs = make(map[uint64]func(State))
	c.order = nil
}

// snapshotLocked copies the state and stamps it with the next version.
func (c *Controller) snapshotLocked() (State, uint64) {
	c.version++
	return c.state, c.version
}

// publish delivers s unless a newer snapshot already went out. A timer
// and a keystroke may race here; the older snapshot is dropped.
func (c *Controller) publish(s State, v uint64) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	if v <= c.delivered {
		return
	}
	c.delivered = v

	c.mu.Lock()
	fns := make([]func(State), 0, len(c.order))
	for _, id := range c.order {
		fns = append(fns, c.subs[id])
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (c *Controller) clearLocked() {
	c.state.Suggestions = locations.Empty()
	c.state.Visible = false
	c.state.Loading = false
	c.nav.Reset(0)
	c.state.Active = c.nav.Active
}

func (c *Controller) hideLocked() {
	c.state.Visible = false
	c.state.Loading = false
	c.nav.Reset(c.state.Suggestions.Len())
	c.state.Active = c.nav.Active
}

func qualifies(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinQueryLength
}

// selectionText is what the input shows after committing entry i.
func selectionText(g locations.GroupedSuggestions, i int) string {
	l, _ := g.At(i)
	if g.IsZipSelection(i) {
		return l.Zip
	}
	return l.Label()
}
