// Package realtime fans live messages out to connected websocket clients.
// Clients subscribe to channels; a slow client drops messages instead of
// blocking the broadcast path.
package realtime

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/hive-backend/internal/pkg/logger"
)

type Event string

const (
	EventLiveStats  Event = "live_stats"
	EventEODSummary Event = "eod_summary"
)

// ChannelGlobal carries the coalesced stats and ranking broadcasts every
// connected client receives.
const ChannelGlobal = "global"

// UserChannel is the per-user channel for targeted pushes such as the
// end-of-day summary.
func UserChannel(userID string) string { return "user:" + userID }

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

type Hub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger:        log.With("component", "LiveHub"),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

func (hub *Hub) AddChannel(client *Client, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}

	client.Channels[channel] = true

	clients, exists := hub.subscriptions[channel]
	if !exists {
		clients = make(map[*Client]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true

	hub.logger.Debug("Live client subscribed", "clientID", client.ID, "channel", channel)
}

func (hub *Hub) RemoveChannel(client *Client, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	delete(client.Channels, channel)

	if subMap, ok := hub.subscriptions[channel]; ok {
		delete(subMap, client)
		if len(subMap) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
}

func (hub *Hub) RemoveClient(client *Client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for ch := range client.Channels {
		if subMap, ok := hub.subscriptions[ch]; ok {
			delete(subMap, client)
			if len(subMap) == 0 {
				delete(hub.subscriptions, ch)
			}
		}
	}
	client.Channels = make(map[string]bool)
	client.closeOnce.Do(func() { close(client.done) })
	hub.logger.Debug("Live client removed", "clientID", client.ID)
}

// ClientCount reports how many clients hold at least one subscription to
// the given channel.
func (hub *Hub) ClientCount(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscriptions[channel])
}

// Users returns the distinct user IDs with at least one connected client.
func (hub *Hub) Users() []uuid.UUID {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, clients := range hub.subscriptions {
		for c := range clients {
			if !seen[c.UserID] {
				seen[c.UserID] = true
				out = append(out, c.UserID)
			}
		}
	}
	return out
}

func (hub *Hub) Broadcast(msg Message) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if msg.Channel == "" {
		return
	}
	clientsMap, ok := hub.subscriptions[msg.Channel]
	if !ok {
		return
	}
	for c := range clientsMap {
		select {
		case c.Outbound <- msg:
		default:
			hub.logger.Warn("Dropping live message; outbound buffer full", "clientID", c.ID)
		}
	}
}
