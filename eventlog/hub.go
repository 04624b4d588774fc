package eventlog

import (
	"context"

	"github.com/minaorangina/flip7/protocol"
)

const subscriberBuffer = 64

type subscriber struct {
	gameID string
	ch     chan protocol.Event
}

// Hub forwards live events to subscribers of a game.
// A subscriber that falls behind misses events rather than slowing the game.
type Hub struct {
	registerCh   chan *subscriber
	unregisterCh chan *subscriber
	broadcastCh  chan protocol.Event
	done         chan struct{}
	subscribers  map[*subscriber]bool
}

func NewHub() *Hub {
	return &Hub{
		registerCh:   make(chan *subscriber),
		unregisterCh: make(chan *subscriber),
		broadcastCh:  make(chan protocol.Event, subscriberBuffer),
		done:         make(chan struct{}),
		subscribers:  map[*subscriber]bool{},
	}
}

// Listen delivers events until ctx is done
func (h *Hub) Listen(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case s := <-h.registerCh:
			h.subscribers[s] = true

		case s := <-h.unregisterCh:
			if h.subscribers[s] {
				delete(h.subscribers, s)
				close(s.ch)
			}

		case e := <-h.broadcastCh:
			for s := range h.subscribers {
				if s.gameID != "" && s.gameID != e.GameID {
					continue
				}
				select {
				case s.ch <- e:
				default:
				}
			}

		case <-ctx.Done():
			for s := range h.subscribers {
				close(s.ch)
			}
			h.subscribers = map[*subscriber]bool{}
			return
		}
	}
}

func (h *Hub) Emit(e protocol.Event) {
	select {
	case h.broadcastCh <- e:
	case <-h.done:
	}
}

// Subscribe returns a channel of events for gameID, or for every game
// when gameID is empty, and a func to stop receiving them
func (h *Hub) Subscribe(gameID string) (<-chan protocol.Event, func()) {
	s := &subscriber{gameID: gameID, ch: make(chan protocol.Event, subscriberBuffer)}
	select {
	case h.registerCh <- s:
	case <-h.done:
		close(s.ch)
		return s.ch, func() {}
	}

	return s.ch, func() {
		select {
		case h.unregisterCh <- s:
		case <-h.done:
		}
	}
}
