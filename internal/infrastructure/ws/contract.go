package ws

import (
	"encoding/json"
	"strings"
)

// Message is the frame written to clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Envelope is the frame read from clients. Data is decoded per event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type MessagePayload struct {
	Message json.RawMessage `json:"message"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type chatMessagePayload struct {
	RoomID     string          `json:"roomId"`
	ChatRoomID string          `json:"chatRoomId"`
	Message    json.RawMessage `json:"message"`
}

func (p chatMessagePayload) room() string {
	if p.RoomID != "" {
		return p.RoomID
	}
	return p.ChatRoomID
}

// NewChatMessage wraps the client supplied message without inspecting it.
func NewChatMessage(message json.RawMessage) *Message {
	return &Message{
		Event: MessageEvent,
		Data:  MessagePayload{Message: message},
	}
}

func NewJoinFailed(reason string) *Message {
	return &Message{
		Event: ErrorEvent,
		Data: ErrorPayload{
			Code:    CodeJoinFailed,
			Message: reason,
		},
	}
}

// parseRoomID accepts either a bare JSON string or {"roomId": "..."}.
func parseRoomID(data json.RawMessage) string {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return strings.TrimSpace(id)
	}

	var obj struct {
		RoomID     string `json:"roomId"`
		ChatRoomID string `json:"chatRoomId"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return ""
	}
	if obj.RoomID != "" {
		return strings.TrimSpace(obj.RoomID)
	}
	return strings.TrimSpace(obj.ChatRoomID)
}

func parseChatMessage(data json.RawMessage) (roomID string, message json.RawMessage, ok bool) {
	var p chatMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", nil, false
	}

	roomID = strings.TrimSpace(p.room())
	if roomID == "" || len(p.Message) == 0 || string(p.Message) == "null" {
		return "", nil, false
	}

	return roomID, p.Message, true
}
