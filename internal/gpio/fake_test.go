package gpio

import "testing"

func TestFakeSourceReplay(t *testing.T) {
	edges := []Edge{
		{Rising: false, Ticks: 100},
		{Rising: true, Ticks: 4100},
		{Rising: false, Ticks: 4430},
	}

	f := NewFakeSource(edges...)
	f.Finish()

	var got []Edge
	for e := range f.Events() {
		got = append(got, e)
	}

	if len(got) != len(edges) {
		t.Fatalf("expected %d edges, got %d", len(edges), len(got))
	}
	for i, e := range got {
		if e != edges[i] {
			t.Errorf("edge %d: expected %+v, got %+v", i, edges[i], e)
		}
	}
}

func TestFakeSourcePush(t *testing.T) {
	f := NewFakeSource(Edge{Rising: false, Ticks: 10})
	f.Push(Edge{Rising: true, Ticks: 20})
	f.Finish()

	var got []Edge
	for e := range f.Events() {
		got = append(got, e)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(got))
	}
	if got[1].Ticks != 20 || !got[1].Rising {
		t.Errorf("pushed edge: expected rising at 20, got %+v", got[1])
	}
}

func TestFakeSourceEmptyScript(t *testing.T) {
	f := NewFakeSource()
	f.Finish()

	if _, ok := <-f.Events(); ok {
		t.Error("expected closed channel for empty script")
	}
}

func TestFakeSourceClose(t *testing.T) {
	f := NewFakeSource(Edge{Rising: true, Ticks: 1})

	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	// Close after Finish must not panic on double channel close.
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error on second close: %v", err)
	}
}

func TestFakeSourceDropped(t *testing.T) {
	f := NewFakeSource()
	if f.Dropped() != 0 {
		t.Error("fake source should never drop edges")
	}
}
