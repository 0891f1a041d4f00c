package gpio

// FakeSource is a test double that replays scripted edges. The script is
// loaded into the channel up front; Finish closes the channel so a consumer
// ranging over Events terminates after the script drains.
type FakeSource struct {
	events chan Edge

	// Closed tracks if Close was called.
	Closed bool

	finished bool
}

// NewFakeSource creates a FakeSource holding the given edges.
func NewFakeSource(edges ...Edge) *FakeSource {
	// Headroom so tests can Push a few edges beyond the initial script.
	f := &FakeSource{events: make(chan Edge, len(edges)+64)}
	for _, e := range edges {
		f.events <- e
	}
	return f
}

// Events returns the scripted edge stream.
func (f *FakeSource) Events() <-chan Edge {
	return f.events
}

// Push appends one edge to the script. Panics if called after Finish.
func (f *FakeSource) Push(e Edge) {
	f.events <- e
}

// Finish closes the stream, signalling end of script.
func (f *FakeSource) Finish() {
	if !f.finished {
		f.finished = true
		close(f.events)
	}
}

// Dropped always returns zero; the fake never discards edges.
func (f *FakeSource) Dropped() uint64 {
	return 0
}

// Close marks the source as closed and ends the stream.
func (f *FakeSource) Close() error {
	f.Closed = true
	f.Finish()
	return nil
}
