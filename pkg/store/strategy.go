package store

import "fmt"

// SaveStrategy selects where a store persists its state.
type SaveStrategy int

const (
	// None keeps state in memory only.
	None SaveStrategy = iota
	// Session persists to the registry's session-scoped backend.
	Session
	// Durable persists to the registry's durable backend.
	Durable
)

// String returns the strategy name.
func (s SaveStrategy) String() string {
	switch s {
	case None:
		return "none"
	case Session:
		return "session"
	case Durable:
		return "durable"
	default:
		return fmt.Sprintf("SaveStrategy(%d)", int(s))
	}
}

// ParseSaveStrategy parses a strategy name as produced by String.
// "local" is accepted as an alias of "durable".
func ParseSaveStrategy(s string) (SaveStrategy, error) {
	switch s {
	case "none", "":
		return None, nil
	case "session":
		return Session, nil
	case "durable", "local":
		return Durable, nil
	default:
		return None, fmt.Errorf("store: unknown save strategy %q", s)
	}
}

// KeyPrefix prefixes every persisted record key.
const KeyPrefix = "STORE/"

// RecordKey returns the backend key under which the named store persists.
func RecordKey(name string) string {
	return KeyPrefix + name
}
