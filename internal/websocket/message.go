package websocket

import (
	"encoding/json"
	"time"

	"forget-me-not/internal/domain"
)

type MessageType string

const (
	TypeNoteCreated MessageType = "note_created"
	TypeNoteUpdated MessageType = "note_updated"
	TypeNoteDeleted MessageType = "note_deleted"
	TypePing        MessageType = "ping"
	TypePong        MessageType = "pong"
	TypeError       MessageType = "error"
)

var noteOpTypes = map[domain.NoteOp]MessageType{
	domain.NoteCreated: TypeNoteCreated,
	domain.NoteUpdated: TypeNoteUpdated,
	domain.NoteDeleted: TypeNoteDeleted,
}

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NotePayload describes a changed note. Deletions only carry the id.
type NotePayload struct {
	ID      string     `json:"id"`
	Title   string     `json:"title,omitempty"`
	Details string     `json:"details,omitempty"`
	UserID  string     `json:"user_id,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
