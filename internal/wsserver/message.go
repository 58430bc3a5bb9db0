package wsserver

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType tags the wire envelope. The set is closed; inbound messages
// with unknown types are ignored.
type MessageType string

const (
	MessageConnected    MessageType = "connected"
	MessagePing         MessageType = "ping"
	MessagePong         MessageType = "pong"
	MessageCSSHotReload MessageType = "css_hot_reload"
	MessageJSReload     MessageType = "js_reload"
	MessageFullReload   MessageType = "full_reload"
	MessageBuildStatus  MessageType = "build_status"
	MessageError        MessageType = "error"
	MessageLog          MessageType = "log"
	MessageClientInfo   MessageType = "client_info"
	MessageDisconnect   MessageType = "disconnect"
)

// Message is the JSON wire envelope: {"type": "...", "data": {...}}.
type Message struct {
	Type MessageType `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type ConnectedData struct {
	ClientID string `json:"client_id"`
}

type CSSHotReloadData struct {
	Files      []string `json:"files"`
	CSSContent string   `json:"css_content"`
	Timestamp  int64    `json:"timestamp"`
}

type FullReloadData struct {
	Reason string `json:"reason"`
}

type BuildStatusData struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorData struct {
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
}

type LogData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type ClientInfoData struct {
	UserAgent  string `json:"user_agent,omitempty"`
	CurrentURL string `json:"current_url,omitempty"`
}

func NewConnected(clientID string) Message {
	return Message{Type: MessageConnected, Data: ConnectedData{ClientID: clientID}}
}

func NewPing() Message {
	return Message{Type: MessagePing}
}

func NewPong() Message {
	return Message{Type: MessagePong}
}

func NewCSSHotReload(files []string, cssContent string) Message {
	return Message{Type: MessageCSSHotReload, Data: CSSHotReloadData{
		Files:      files,
		CSSContent: cssContent,
		Timestamp:  time.Now().UnixMilli(),
	}}
}

func NewJSReload() Message {
	return Message{Type: MessageJSReload}
}

func NewFullReload(reason string) Message {
	return Message{Type: MessageFullReload, Data: FullReloadData{Reason: reason}}
}

func NewBuildStatus(status, message string) Message {
	return Message{Type: MessageBuildStatus, Data: BuildStatusData{Status: status, Message: message}}
}

func NewError(message, errorType string) Message {
	return Message{Type: MessageError, Data: ErrorData{Message: message, ErrorType: errorType}}
}

func NewLog(level, message string) Message {
	return Message{Type: MessageLog, Data: LogData{Level: level, Message: message}}
}

func NewDisconnect() Message {
	return Message{Type: MessageDisconnect}
}

// Encode serializes the message to its wire payload.
func (m Message) Encode() ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", m.Type, err)
	}
	return payload, nil
}

// inboundMessage is the envelope form used when parsing client messages.
type inboundMessage struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

func decodeInbound(payload []byte) (inboundMessage, error) {
	var msg inboundMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return inboundMessage{}, fmt.Errorf("malformed client message: %w", err)
	}
	return msg, nil
}

func unmarshalData(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
