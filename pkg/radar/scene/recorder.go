package scene

import "sync"

// Recorder forwards commands to an optional surface and keeps them until
// drained. Clients driving a remote surface poll [Recorder.Drain] after each
// interaction.
type Recorder struct {
	mu   sync.Mutex
	next Surface
	cmds []Command
	max  int
}

// NewRecorder creates a recorder forwarding to next, which may be nil.
// At most limit commands are retained (0 means unbounded); older commands
// are dropped first.
func NewRecorder(next Surface, limit int) *Recorder {
	return &Recorder{next: next, max: limit}
}

// Apply implements [Surface].
func (r *Recorder) Apply(cmds ...Command) error {
	r.mu.Lock()
	r.cmds = append(r.cmds, cmds...)
	if r.max > 0 && len(r.cmds) > r.max {
		r.cmds = append(r.cmds[:0:0], r.cmds[len(r.cmds)-r.max:]...)
	}
	r.mu.Unlock()
	if r.next == nil {
		return nil
	}
	return r.next.Apply(cmds...)
}

// Drain returns and clears the recorded commands.
func (r *Recorder) Drain() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.cmds
	r.cmds = nil
	return out
}

// Len returns the number of recorded commands.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cmds)
}
