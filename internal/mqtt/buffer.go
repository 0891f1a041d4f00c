package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog is a fixed-capacity FIFO that stores messages while the broker is
// unreachable. Not safe for concurrent use — caller must synchronize.
type backlog struct {
	buf      []bufferedMsg
	capacity int
	head     int // next write position
	count    int
	overflow bool // true if any message was dropped since last drain
}

func newBacklog(capacity int) *backlog {
	return &backlog{
		buf:      make([]bufferedMsg, capacity),
		capacity: capacity,
	}
}

func (b *backlog) push(msg bufferedMsg) {
	if b.count == b.capacity {
		if !b.overflow {
			log.Printf("mqtt: backlog full (%d messages), dropping oldest", b.capacity)
			b.overflow = true
		}
		// Overwrite oldest: head is already pointing at it
		b.buf[b.head] = msg
		b.head = (b.head + 1) % b.capacity
		// count stays at capacity
		return
	}
	b.buf[b.head] = msg
	b.head = (b.head + 1) % b.capacity
	b.count++
}

func (b *backlog) drainAll() []bufferedMsg {
	if b.count == 0 {
		return nil
	}

	result := make([]bufferedMsg, b.count)
	// Oldest item is at (head - count) mod capacity
	start := (b.head - b.count + b.capacity) % b.capacity
	for i := 0; i < b.count; i++ {
		result[i] = b.buf[(start+i)%b.capacity]
	}

	b.count = 0
	b.head = 0
	b.overflow = false
	return result
}

func (b *backlog) len() int {
	return b.count
}
