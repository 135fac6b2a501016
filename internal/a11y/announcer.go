// Package a11y provides the accessibility pieces shared by both surfaces:
// a live-region announcer, a focus trap, arrow-key tab movement and the
// single-modal slot.
package a11y

import (
	"sync"

	"github.com/complyhub/complyhub/internal/dom"
	"golang.org/x/net/html"
)

// Announcer speaks short status text to assistive technology.
type Announcer interface {
	Announce(text string)
}

// AnnouncerID is the id of the live-region element.
const AnnouncerID = "sr-announcer"

// LiveRegion announces through one polite live-region element in a
// document. The element is created on first use. Each announcement
// overwrites the previous one; rapid announcements are not queued.
type LiveRegion struct {
	doc *dom.Document
}

func NewLiveRegion(doc *dom.Document) *LiveRegion {
	return &LiveRegion{doc: doc}
}

func (r *LiveRegion) Announce(text string) {
	dom.SetText(r.element(), text)
}

// Last returns the text currently in the live region.
func (r *LiveRegion) Last() string {
	n := r.doc.ByID(AnnouncerID)
	if n == nil {
		return ""
	}
	return dom.Text(n)
}

func (r *LiveRegion) element() *html.Node {
	if n := r.doc.ByID(AnnouncerID); n != nil {
		return n
	}
	n := dom.Element("div",
		"id", AnnouncerID,
		"class", "visually-hidden",
		"aria-live", "polite",
		"aria-atomic", "true",
	)
	dom.Append(r.doc.Body(), n)
	return n
}

// StatusLine is an in-memory announcer for the terminal surface, shown in
// the footer.
type StatusLine struct {
	mu   sync.Mutex
	text string
}

func (s *StatusLine) Announce(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

func (s *StatusLine) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Discard drops every announcement.
type Discard struct{}

func (Discard) Announce(string) {}

var (
	_ Announcer = (*LiveRegion)(nil)
	_ Announcer = (*StatusLine)(nil)
	_ Announcer = Discard{}
)
