package notify

import "sync"

// Hub fans messages out to in-process subscribers, one set per topic.
// Subscriber channels are buffered; a full subscriber misses the message
// rather than stalling the publisher.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[chan Message]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: map[string]map[chan Message]struct{}{}}
}

// Subscribe registers a subscriber on topic. The returned cancel func
// unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(topic string) (<-chan Message, func()) {
	ch := make(chan Message, 8)
	h.mu.Lock()
	subs := h.topics[topic]
	if subs == nil {
		subs = map[chan Message]struct{}{}
		h.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.topics[topic], ch)
			if len(h.topics[topic]) == 0 {
				delete(h.topics, topic)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Broadcast delivers m to every subscriber of topic without blocking.
func (h *Hub) Broadcast(topic string, m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.topics[topic] {
		select {
		case ch <- m:
		default:
		}
	}
}

// Subscribers reports how many subscribers a topic has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

// Topic binds the hub to one topic, giving a Notifier.
func (h *Hub) Topic(topic string) Notifier {
	return topicNotifier{hub: h, topic: topic}
}

type topicNotifier struct {
	hub   *Hub
	topic string
}

func (t topicNotifier) Publish(m Message) error {
	t.hub.Broadcast(t.topic, m)
	return nil
}

func (t topicNotifier) Subscribe() (<-chan Message, func()) {
	return t.hub.Subscribe(t.topic)
}
