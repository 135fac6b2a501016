package a11y

type Key int

const (
	KeyOther Key = iota
	KeyLeft
	KeyRight
	KeyEscape
	KeyTab
)

// ParseKey maps DOM KeyboardEvent.key names and terminal key names.
func ParseKey(name string) Key {
	switch name {
	case "ArrowLeft", "left":
		return KeyLeft
	case "ArrowRight", "right":
		return KeyRight
	case "Escape", "esc":
		return KeyEscape
	case "Tab", "tab":
		return KeyTab
	}
	return KeyOther
}

// ArrowKey returns the tab index reached from index by key among n sibling
// tabs. Left and Right wrap circularly; other keys keep the index.
func ArrowKey(index, n int, key Key) int {
	if n <= 0 {
		return index
	}
	switch key {
	case KeyRight:
		return (index + 1) % n
	case KeyLeft:
		return (index - 1 + n) % n
	}
	return index
}
