package proxy

//go:generate go tool stringer -type=State -trimprefix=State -output=state_string.go

// State is the resolution state of a handle.
type State int

const (
	StateUnresolved State = iota
	StateResolved
	StateNull
)
