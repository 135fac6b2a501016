// Package nav is the two-level navigation state machine: one active page,
// and one active tab per independent tab group.
package nav

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/complyhub/complyhub/internal/a11y"
)

var (
	ErrEmptyGroup     = errors.New("tab group has no tabs")
	ErrDuplicateGroup = errors.New("tab group already registered")
)

type ChangeKind int

const (
	PageChanged ChangeKind = iota
	TabChanged
)

// Change describes a completed transition. Container is empty for pages.
type Change struct {
	Kind      ChangeKind
	Container string
	ID        string
}

type Observer func(Change)

type tabGroup struct {
	tabs   []string
	active int
}

// Controller owns navigation state. Transitions are synchronous; unknown
// targets are ignored and leave state unchanged.
type Controller struct {
	mu        sync.Mutex
	pages     []string
	active    string
	groups    map[string]*tabGroup
	order     []string
	announcer a11y.Announcer
	observers []Observer
}

// New builds a controller over the ordered page ids. The first page starts
// active.
func New(pages []string, announcer a11y.Announcer) *Controller {
	if announcer == nil {
		announcer = a11y.Discard{}
	}
	c := &Controller{
		pages:     append([]string(nil), pages...),
		groups:    make(map[string]*tabGroup),
		announcer: announcer,
	}
	if len(pages) > 0 {
		c.active = pages[0]
	}
	return c
}

// AddTabGroup registers the tabs of one container. The first tab starts active.
func (c *Controller) AddTabGroup(container string, tabs []string) error {
	if len(tabs) == 0 {
		return fmt.Errorf("%s: %w", container, ErrEmptyGroup)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.groups[container]; ok {
		return fmt.Errorf("%s: %w", container, ErrDuplicateGroup)
	}
	c.groups[container] = &tabGroup{tabs: append([]string(nil), tabs...)}
	c.order = append(c.order, container)
	return nil
}

func (c *Controller) Subscribe(o Observer) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// SwitchPage activates page id. It returns false, changing nothing, when
// id is not a known page.
func (c *Controller) SwitchPage(id string) bool {
	c.mu.Lock()
	if !slices.Contains(c.pages, id) {
		c.mu.Unlock()
		return false
	}
	c.active = id
	c.mu.Unlock()

	c.announcer.Announce(fmt.Sprintf("Switched to %s page", id))
	c.emit(Change{Kind: PageChanged, ID: id})
	return true
}

// SwitchTab activates tab within the group of container only.
func (c *Controller) SwitchTab(container, tab string) bool {
	c.mu.Lock()
	g, ok := c.groups[container]
	if !ok {
		c.mu.Unlock()
		return false
	}
	i := slices.Index(g.tabs, tab)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	g.active = i
	c.mu.Unlock()

	c.announcer.Announce(fmt.Sprintf("Switched to %s tab", tab))
	c.emit(Change{Kind: TabChanged, Container: container, ID: tab})
	return true
}

// MoveTab applies an arrow key to the container's tab group, wrapping
// circularly, and activates the tab it lands on.
func (c *Controller) MoveTab(container string, key a11y.Key) (string, bool) {
	c.mu.Lock()
	g, ok := c.groups[container]
	if !ok {
		c.mu.Unlock()
		return "", false
	}
	next := a11y.ArrowKey(g.active, len(g.tabs), key)
	if next == g.active {
		c.mu.Unlock()
		return g.tabs[g.active], false
	}
	tab := g.tabs[next]
	c.mu.Unlock()

	return tab, c.SwitchTab(container, tab)
}

// GroupOf returns the container whose group holds tab, searching groups in
// registration order.
func (c *Controller) GroupOf(tab string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range c.order {
		if slices.Contains(c.groups[name].tabs, tab) {
			return name, true
		}
	}
	return "", false
}

func (c *Controller) ActivePage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) ActiveTab(container string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[container]
	if !ok {
		return "", false
	}
	return g.tabs[g.active], true
}

func (c *Controller) Pages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.pages...)
}

func (c *Controller) Tabs(container string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.groups[container]; ok {
		return append([]string(nil), g.tabs...)
	}
	return nil
}

// Groups returns container ids in registration order.
func (c *Controller) Groups() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

func (c *Controller) emit(ch Change) {
	c.mu.Lock()
	obs := append([]Observer(nil), c.observers...)
	c.mu.Unlock()
	for _, o := range obs {
		o(ch)
	}
}
