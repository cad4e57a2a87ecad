package watcher

import "github.com/fsnotify/fsnotify"

// Kind classifies a filesystem event.
type Kind int

const (
	Other Kind = iota
	Create
	Remove
	Modify
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Remove:
		return "remove"
	case Modify:
		return "modify"
	default:
		return "other"
	}
}

// Event is one filesystem notification with the paths it concerns.
type Event struct {
	Kind  Kind
	Paths []string
}

// kindOf maps fsnotify operations. Renames surface as Modify: the old name
// is reported without its destination, so they cannot drive renames.
func kindOf(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Create):
		return Create
	case op.Has(fsnotify.Remove):
		return Remove
	case op.Has(fsnotify.Write), op.Has(fsnotify.Rename):
		return Modify
	default:
		return Other
	}
}
