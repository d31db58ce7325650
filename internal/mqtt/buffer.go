package mqtt

import "log"

// bufferedMsg is a serialized message waiting for a connection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer holds the most recent messages published while offline.
// When full, the oldest message is overwritten.
// Not safe for concurrent use; RealPublisher guards it with its mutex.
type ringBuffer struct {
	buf     []bufferedMsg
	head    int // next write position
	count   int
	dropped int // overwritten since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{buf: make([]bufferedMsg, capacity)}
}

// push appends msg and reports whether it fit without losing an older one.
func (r *ringBuffer) push(msg bufferedMsg) bool {
	size := len(r.buf)
	r.buf[r.head] = msg
	r.head = (r.head + 1) % size
	if r.count < size {
		r.count++
		return true
	}
	if r.dropped == 0 {
		log.Printf("mqtt: offline buffer full at %d, oldest messages lost", size)
	}
	r.dropped++
	return false
}

// drainAll returns the buffered messages oldest first and empties the buffer.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}
	size := len(r.buf)
	start := (r.head - r.count + size) % size
	out := make([]bufferedMsg, r.count)
	for i := range out {
		out[i] = r.buf[(start+i)%size]
	}
	if r.dropped > 0 {
		log.Printf("mqtt: %d buffered messages were lost while offline", r.dropped)
	}
	r.head, r.count, r.dropped = 0, 0, 0
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
