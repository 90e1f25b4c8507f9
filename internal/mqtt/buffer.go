package mqtt

import "log"

// queuedMsg stores a serialized MQTT message for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue is a fixed-capacity FIFO holding messages published while
// the broker connection is down. When full, the oldest message is dropped.
// Not safe for concurrent use; the caller must synchronize.
type offlineQueue struct {
	msgs    []queuedMsg
	max     int
	dropped bool // a message was dropped since the last drain
}

func newOfflineQueue(max int) *offlineQueue {
	return &offlineQueue{max: max}
}

func (q *offlineQueue) push(msg queuedMsg) {
	if len(q.msgs) == q.max {
		if !q.dropped {
			log.Printf("mqtt: offline queue full (%d messages), dropping oldest", q.max)
			q.dropped = true
		}
		copy(q.msgs, q.msgs[1:])
		q.msgs[len(q.msgs)-1] = msg
		return
	}
	q.msgs = append(q.msgs, msg)
}

// drain returns all queued messages in publish order and empties the queue.
func (q *offlineQueue) drain() []queuedMsg {
	if len(q.msgs) == 0 {
		return nil
	}
	out := q.msgs
	q.msgs = nil
	q.dropped = false
	return out
}

func (q *offlineQueue) len() int {
	return len(q.msgs)
}
