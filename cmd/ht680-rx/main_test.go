package main

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/ht680-rx/internal/gpio"
	"github.com/sweeney/ht680-rx/internal/ht680"
	"github.com/sweeney/ht680-rx/internal/mqtt"
	"github.com/sweeney/ht680-rx/internal/status"
)

// Test timing: 330K preset (100 kHz) at 1us ticks gives T=330 ticks.
const (
	testFosc  = 100
	testShort = 330
	testLong  = 660
	testPilot = 12000
)

// edgeScript builds a synthetic pulse train as gpio edges.
type edgeScript struct {
	edges []gpio.Edge
	now   uint32
}

func (s *edgeScript) edge(rising bool, after uint32) {
	s.now += after
	s.edges = append(s.edges, gpio.Edge{Rising: rising, Ticks: s.now})
}

func (s *edgeScript) symbol(sym bool) {
	if sym {
		s.edge(true, testLong)
		s.edge(false, testShort)
	} else {
		s.edge(true, testShort)
		s.edge(false, testLong)
	}
}

func (s *edgeScript) bit(b byte) {
	switch b {
	case '0':
		s.symbol(false)
		s.symbol(false)
	case '1':
		s.symbol(true)
		s.symbol(true)
	case 'Z':
		s.symbol(true)
		s.symbol(false)
	case 'S':
		s.symbol(false)
		s.symbol(true)
	}
}

// frame appends a complete transmission for value/zMask.
func (s *edgeScript) frame(value, zMask uint16) {
	s.edge(false, 100)
	s.edge(true, testPilot)
	s.edge(false, testShort)
	s.bit('S')
	s.bit('S')
	for i := 0; i < ht680.DataBits; i++ {
		switch {
		case zMask&(1<<i) != 0:
			s.bit('Z')
		case value&(1<<i) != 0:
			s.bit('1')
		default:
			s.bit('0')
		}
	}
	s.bit('0')
	s.bit('0')
}

func newTestDecoder(t *testing.T) *ht680.Decoder {
	t.Helper()
	dec, err := ht680.New(testFosc, ht680.DefaultTolerance, ht680.DefaultTickLengthUS, ht680.DefaultNoiseFilterUS)
	if err != nil {
		t.Fatalf("ht680.New: %v", err)
	}
	return dec
}

func testChip(t *testing.T) ht680.Chip {
	t.Helper()
	chip, err := ht680.ChipByName("HT680")
	if err != nil {
		t.Fatalf("ChipByName: %v", err)
	}
	return chip
}

func TestRunLoopDecodesFrame(t *testing.T) {
	script := &edgeScript{}
	script.frame(0xABCD, 0)
	source := gpio.NewFakeSource(script.edges...)
	source.Finish()

	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Now(), status.Config{})

	err := runLoop(source, newTestDecoder(t), testChip(t), pub, pub, tracker, time.Now, nil, nil)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.Frames) != 1 {
		t.Fatalf("expected 1 published frame, got %d", len(pub.Frames))
	}
	if pub.Frames[0].Value != 0xABCD {
		t.Errorf("frame value: got %#04x, want 0xabcd", pub.Frames[0].Value)
	}
	if pub.Frames[0].ZMask != 0 {
		t.Errorf("frame z_mask: got %#04x, want 0", pub.Frames[0].ZMask)
	}
	if pub.Frames[0].Chip != "HT680" {
		t.Errorf("frame chip: got %q, want HT680", pub.Frames[0].Chip)
	}

	snap := tracker.Snapshot()
	if snap.LastFrame == nil {
		t.Fatal("tracker last frame not set")
	}
	if snap.LastFrame.Value != 0xABCD {
		t.Errorf("tracker frame value: got %#04x, want 0xabcd", snap.LastFrame.Value)
	}
	if snap.Counts.Frames != 1 {
		t.Errorf("tracker frame count: got %d, want 1", snap.Counts.Frames)
	}
}

func TestRunLoopDecodesBackToBackFrames(t *testing.T) {
	script := &edgeScript{}
	script.frame(0x1111, 0)
	script.frame(0x2222, 1<<3)
	source := gpio.NewFakeSource(script.edges...)
	source.Finish()

	pub := mqtt.NewFakePublisher()

	err := runLoop(source, newTestDecoder(t), testChip(t), pub, pub, nil, time.Now, nil, nil)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.Frames) != 2 {
		t.Fatalf("expected 2 published frames, got %d", len(pub.Frames))
	}
	if pub.Frames[0].Value != 0x1111 {
		t.Errorf("frame 0 value: got %#04x, want 0x1111", pub.Frames[0].Value)
	}
	if pub.Frames[1].Value != 0x2222&^(1<<3) {
		t.Errorf("frame 1 value: got %#04x, want %#04x", pub.Frames[1].Value, 0x2222&^(1<<3))
	}
	if pub.Frames[1].ZMask != 1<<3 {
		t.Errorf("frame 1 z_mask: got %#04x, want bit 3", pub.Frames[1].ZMask)
	}
}

func TestRunLoopPublishErrorDoesNotAbort(t *testing.T) {
	script := &edgeScript{}
	script.frame(0xABCD, 0)
	script.frame(0x5555, 0)
	source := gpio.NewFakeSource(script.edges...)
	source.Finish()

	pub := mqtt.NewFakePublisher()
	pub.PublishError = errors.New("simulated error")

	err := runLoop(source, newTestDecoder(t), testChip(t), pub, pub, nil, time.Now, nil, nil)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
	if len(pub.Frames) != 0 {
		t.Errorf("expected no recorded frames with publish error, got %d", len(pub.Frames))
	}
}

func TestRunLoopShutdownOnSignal(t *testing.T) {
	source := gpio.NewFakeSource()
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Now(), status.Config{})

	sig := make(chan os.Signal)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(source, newTestDecoder(t), testChip(t), pub, pub, tracker, time.Now, nil, sig)
	}()

	sig <- syscall.SIGTERM
	if err := <-errCh; err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	if pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN event, got %q", pub.SystemEvents[0].Event)
	}
	if pub.SystemEvents[0].Reason != "SIGTERM" {
		t.Errorf("expected SIGTERM reason, got %q", pub.SystemEvents[0].Reason)
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	source := gpio.NewFakeSource()
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker(time.Now(), status.Config{})

	hb := make(chan time.Time) // unbuffered: send completes when the loop receives
	sig := make(chan os.Signal)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(source, newTestDecoder(t), testChip(t), pub, pub, tracker, time.Now, hb, sig)
	}()

	hb <- time.Time{}
	sig <- syscall.SIGTERM
	if err := <-errCh; err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.SystemEvents) != 2 {
		t.Fatalf("expected HEARTBEAT + SHUTDOWN, got %d events", len(pub.SystemEvents))
	}
	if pub.SystemEvents[0].Event != "HEARTBEAT" {
		t.Errorf("expected HEARTBEAT first, got %q", pub.SystemEvents[0].Event)
	}
}

func TestRunLoopIgnoresNoise(t *testing.T) {
	script := &edgeScript{}
	// Random-ish symbol soup without a pilot must decode nothing.
	script.edge(false, 100)
	for i := 0; i < 30; i++ {
		script.symbol(i%3 == 0)
	}
	script.frame(0x00FF, 0)
	source := gpio.NewFakeSource(script.edges...)
	source.Finish()

	pub := mqtt.NewFakePublisher()

	err := runLoop(source, newTestDecoder(t), testChip(t), pub, pub, nil, time.Now, nil, nil)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(pub.Frames) != 1 {
		t.Fatalf("expected only the real frame, got %d", len(pub.Frames))
	}
	if pub.Frames[0].Value != 0x00FF {
		t.Errorf("frame value: got %#04x, want 0x00ff", pub.Frames[0].Value)
	}
}
