package pipeline

// State tracks the pipeline frontier. It is owned by a single run and never shared.
type State struct {
	Current  string // input for the next step
	Original string // fetched source, never deleted by the sequencer
}

// NewState starts a run at the original source.
func NewState(original string) State {
	return State{Current: original, Original: original}
}

// Advance moves the frontier to output and returns the path it replaced.
func (s *State) Advance(output string) (previous string) {
	previous, s.Current = s.Current, output
	return previous
}

// AtOriginal reports whether no step has completed yet.
func (s State) AtOriginal() bool {
	return s.Current == s.Original
}
