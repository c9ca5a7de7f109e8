// Package events contains the WebSocket message contracts pushed to renderers.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageTypeAnalysisLoaded  MessageType = "analysis:loaded"
	MessageTypeSessionUpdated  MessageType = "session:updated"
	MessageTypeExportCompleted MessageType = "export:completed"

	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// WebSocketMessage is the envelope of every pushed message.
type WebSocketMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// NewMessage stamps a message with the current time.
func NewMessage(msgType MessageType, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// ErrorMessage is the payload of MessageTypeError.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
