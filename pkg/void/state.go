package void

type State int

const (
	Composing State = iota
	LoadingResult
	ShowingResult
)

func (s State) String() string {
	switch s {
	case Composing:
		return "composing"
	case LoadingResult:
		return "loading-result"
	case ShowingResult:
		return "showing-result"
	}
	return "unknown"
}

// Snapshot is a copy of the screen state at one point in time.
type Snapshot struct {
	State    State
	Draft    string
	Received string
}

// Viewing reports whether the result panel replaces the composer.
func (s Snapshot) Viewing() bool {
	return s.State != Composing
}

func (s Snapshot) Loading() bool {
	return s.State == LoadingResult
}
