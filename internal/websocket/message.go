package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Client to Server
	MessageTypeChatMessage MessageType = "CHAT_MESSAGE"

	// Server to Client
	MessageTypeChatReply MessageType = "CHAT_REPLY"
	MessageTypeError     MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type ChatMessagePayload struct {
	Message string `json:"message"`
}

// Server to Client payloads

type ChatReplyPayload struct {
	Response       string   `json:"response"`
	Sources        []string `json:"sources,omitempty"`
	ConversationID string   `json:"conversationId"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
