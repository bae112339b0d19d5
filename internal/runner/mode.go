package runner

import "fmt"

// Mode decides what happens to the final snapshot.
type Mode uint8

const (
	// ModeCommit writes every modified artifact.
	ModeCommit Mode = iota
	// ModeVerify never writes; pending changes are only reported.
	ModeVerify
)

func (m Mode) String() string {
	switch m {
	case ModeCommit:
		return "commit"
	case ModeVerify:
		return "verify"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMode parses "commit" or "verify".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "commit", "":
		return ModeCommit, nil
	case "verify", "dry-run":
		return ModeVerify, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want commit or verify)", s)
	}
}
