package models

import "time"

// Chat roles as sent to and received from the model.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatTurn is one message of the conversation transcript.
type ChatTurn struct {
	Role        string       `json:"role"`
	Text        string       `json:"text"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a per-turn upload. For images Payload is base64-encoded
// bytes (a leading data-URL prefix is tolerated); for text it is the raw
// text. Attachments are never persisted, they live for one turn only.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Payload  string `json:"payload"`
	IsImage  bool   `json:"isImage"`
}
