package domain

import (
	"strconv"
	"time"
)

const MessageTypeUnstructured = "unstructured"

// ChatFallbackReply is sent when there is nothing useful to answer with
const ChatFallbackReply = "Try again!"

// Unstructured is a free-text chat message
type Unstructured struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

type ChatMessage struct {
	Type         string       `json:"type"`
	Unstructured Unstructured `json:"unstructured"`
}

// ChatRequest is what the web client posts for one turn
type ChatRequest struct {
	UserID   string        `json:"userId,omitempty"`
	Messages []ChatMessage `json:"messages"`
}

type ChatResponse struct {
	Messages []ChatMessage `json:"messages"`
}

// FirstText returns the text of the first message, if any
func (r *ChatRequest) FirstText() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].Unstructured.Text
}

// NLUReply is the subset of the NLU engine's text response the relay needs
type NLUReply struct {
	Message     string            `json:"message"`
	IntentName  string            `json:"intentName,omitempty"`
	DialogState string            `json:"dialogState,omitempty"`
	Slots       Slots             `json:"slots,omitempty"`
	Session     SessionAttributes `json:"sessionAttributes,omitempty"`
}

// NewChatReply wraps text as the single unstructured message of a reply.
// The timestamp is Unix seconds with a fractional part.
func NewChatReply(text string, at time.Time) *ChatResponse {
	ts := float64(at.UnixNano()) / float64(time.Second)
	return &ChatResponse{
		Messages: []ChatMessage{{
			Type: MessageTypeUnstructured,
			Unstructured: Unstructured{
				ID:        "1",
				Text:      text,
				Timestamp: strconv.FormatFloat(ts, 'f', 6, 64),
			},
		}},
	}
}
