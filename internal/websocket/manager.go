package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"forget-me-not/internal/domain"
)

var (
	ErrTooManyConnections = errors.New("too many connections for user")
	ErrManagerClosed      = errors.New("websocket manager stopped")
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

// Manager tracks live connections and fans note changes out to all of them.
type Manager struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]bool
	clientsMutex   sync.RWMutex
	incoming       chan *ClientMessage
	done           chan struct{}
	maxConnPerUser int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
}

func NewManager(maxConnPerUser int, writeWait, pongWait, pingPeriod time.Duration) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		incoming:       make(chan *ClientMessage),
		done:           make(chan struct{}),
		maxConnPerUser: maxConnPerUser,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
	}
}

// Run handles client messages until ctx is cancelled, then disconnects
// every client.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case msg := <-m.incoming:
			m.processMessage(msg)
		}
	}
}

func (m *Manager) deliver(msg *ClientMessage) bool {
	select {
	case m.incoming <- msg:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) Register(client *Client) error {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	select {
	case <-m.done:
		return ErrManagerClosed
	default:
	}

	if len(m.userIndex[client.UserID]) >= m.maxConnPerUser {
		slog.Warn("max connections reached", "user", client.UserID)
		return ErrTooManyConnections
	}

	if m.userIndex[client.UserID] == nil {
		m.userIndex[client.UserID] = make(map[string]bool)
	}

	m.clients[client.ID] = client
	m.userIndex[client.UserID][client.ID] = true

	slog.Debug("client registered", "client", client.ID, "user", client.UserID)
	return nil
}

// Unregister removes the client and closes its send channel. Calling it
// twice is harmless.
func (m *Manager) Unregister(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	m.removeLocked(client)
}

func (m *Manager) removeLocked(client *Client) {
	if _, ok := m.clients[client.ID]; !ok {
		return
	}

	delete(m.clients, client.ID)
	delete(m.userIndex[client.UserID], client.ID)
	if len(m.userIndex[client.UserID]) == 0 {
		delete(m.userIndex, client.UserID)
	}

	close(client.Send)
	slog.Debug("client unregistered", "client", client.ID)
}

func (m *Manager) shutdown() {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	close(m.done)

	for _, client := range m.clients {
		m.removeLocked(client)
	}
}

func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		slog.Debug("invalid websocket message", "client", clientMsg.Client.ID, "err", err)
		m.reply(clientMsg.Client, TypeError, &ErrorPayload{Error: "invalid message"})
		return
	}

	switch msg.Type {
	case TypePing:
		m.reply(clientMsg.Client, TypePong, nil)
	default:
		slog.Debug("unknown websocket message type", "type", msg.Type)
	}
}

func (m *Manager) reply(client *Client, msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		slog.Error("failed to build websocket message", "err", err)
		return
	}
	if err := m.SendToClient(client.ID, msg); err != nil {
		slog.Error("failed to send websocket message", "err", err)
	}
}

// Broadcast sends message to every connected client. Clients whose buffer
// is full are disconnected.
func (m *Manager) Broadcast(message *Message) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	var slow []*Client

	m.clientsMutex.RLock()
	for _, client := range m.clients {
		select {
		case client.Send <- messageBytes:
		default:
			slow = append(slow, client)
		}
	}
	m.clientsMutex.RUnlock()

	for _, client := range slow {
		slog.Warn("client send buffer full, closing connection", "client", client.ID)
		m.Unregister(client)
	}

	return nil
}

func (m *Manager) SendToClient(clientID string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case client.Send <- messageBytes:
	default:
		slog.Warn("client send buffer full", "client", clientID)
	}

	return nil
}

// NotifyNote publishes a note change to the live feed.
func (m *Manager) NotifyNote(op domain.NoteOp, note *domain.Note) {
	msgType, ok := noteOpTypes[op]
	if !ok {
		return
	}

	payload := &NotePayload{ID: note.ID}
	if op != domain.NoteDeleted {
		payload.Title = note.Title
		payload.Details = note.Details
		payload.UserID = note.UserID
		date := note.Date
		payload.Date = &date
	}

	msg, err := NewMessage(msgType, payload)
	if err != nil {
		slog.Error("failed to build note event", "err", err)
		return
	}

	if err := m.Broadcast(msg); err != nil {
		slog.Error("failed to broadcast note event", "err", err)
	}
}

func (m *Manager) GetUserConnections(userID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	return len(m.userIndex[userID])
}

func (m *Manager) MaxConnPerUser() int {
	return m.maxConnPerUser
}

func (m *Manager) ConnectionCount() int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	return len(m.clients)
}
