package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/V4T54L/brokerdesk/internal/domain"
)

const keepAliveInterval = 15 * time.Second

// sseMessage is one frame on the wire: the event name and its JSON body.
type sseMessage struct {
	event string
	data  []byte
}

// LeadEventBroker implements domain.LeadEventPublisher and fans lead changes out to
// connected SSE clients so every open dashboard sees the same collection.
type LeadEventBroker struct {
	logger  *slog.Logger
	clients map[chan sseMessage]struct{}
	mu      sync.RWMutex
	events  chan domain.LeadEvent
}

// NewLeadEventBroker creates a new broker and starts its processing loop.
func NewLeadEventBroker(ctx context.Context, logger *slog.Logger) *LeadEventBroker {
	broker := &LeadEventBroker{
		logger:  logger.With("component", "lead_event_broker"),
		clients: make(map[chan sseMessage]struct{}),
		events:  make(chan domain.LeadEvent, 1000),
	}
	go broker.run(ctx)
	return broker
}

// Publish enqueues an event. It never blocks the mutation path.
func (b *LeadEventBroker) Publish(event domain.LeadEvent) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn("lead event channel is full, dropping event", "type", event.Type, "lead_id", event.Lead.ID)
	}
}

// ServeHTTP handles GET /api/leads/events/.
func (b *LeadEventBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	messageChan := make(chan sseMessage, 16)
	b.addClient(messageChan)
	defer b.removeClient(messageChan)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case msg, ok := <-messageChan:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.event, msg.data)
			flusher.Flush()
		}
	}
}

// Clients returns the number of connected clients.
func (b *LeadEventBroker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *LeadEventBroker) addClient(client chan sseMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	b.logger.Info("SSE client connected", "clients", len(b.clients))
}

func (b *LeadEventBroker) removeClient(client chan sseMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
		b.logger.Info("SSE client disconnected", "clients", len(b.clients))
	}
}

func (b *LeadEventBroker) broadcast(msg sseMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client <- msg:
		default:
			// Slow client; skip rather than stall everyone else.
		}
	}
}

func (b *LeadEventBroker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.events:
			data, err := json.Marshal(event)
			if err != nil {
				b.logger.Error("Failed to marshal lead event", "error", err)
				continue
			}
			b.broadcast(sseMessage{event: string(event.Type), data: data})
		}
	}
}
