package chat

import (
	"encoding/json"
	"fmt"
)

// Roles used on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content part type tags as the backend expects them.
const (
	PartTypeText       = "text"
	PartTypeInputText  = "input_text"
	PartTypeInputImage = "input_image"
)

// ContentPart represents one part of a multi-modal message content
type ContentPart interface {
	isContentPart()
	PartType() string
}

// TextPart is plain text content (assistant replies, user text when vision is off).
type TextPart struct {
	Text string
}

func (TextPart) isContentPart()   {}
func (TextPart) PartType() string { return PartTypeText }

// InputTextPart is user text sent while vision mode is on.
type InputTextPart struct {
	Text string
}

func (InputTextPart) isContentPart()   {}
func (InputTextPart) PartType() string { return PartTypeInputText }

// InputImagePart is a user-attached image, carried as a data URL.
type InputImagePart struct {
	ImageURL string
}

func (InputImagePart) isContentPart()   {}
func (InputImagePart) PartType() string { return PartTypeInputImage }

// Message 会话消息，content 为有序多模态片段
// Message is one conversation message; content is an ordered multi-modal sequence.
type Message struct {
	Role    string
	Content []ContentPart
}

// Conversation 会话摘要（侧栏条目）
// Conversation is a summary entry as listed in the sidebar.
type Conversation struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// NewSystemText builds a system message with a single text part.
func NewSystemText(text string) Message {
	return Message{Role: RoleSystem, Content: []ContentPart{TextPart{Text: text}}}
}

// NewAssistantText builds an assistant message with a single text part.
func NewAssistantText(text string) Message {
	return Message{Role: RoleAssistant, Content: []ContentPart{TextPart{Text: text}}}
}

// NewUserText builds a plain user message (vision off).
func NewUserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentPart{TextPart{Text: text}}}
}

// NewUserVision builds a vision-mode user message: one input_text part
// followed by one input_image part per attached data URL.
func NewUserVision(text string, imageURLs []string) Message {
	parts := make([]ContentPart, 0, 1+len(imageURLs))
	parts = append(parts, InputTextPart{Text: text})
	for _, u := range imageURLs {
		parts = append(parts, InputImagePart{ImageURL: u})
	}
	return Message{Role: RoleUser, Content: parts}
}

// Text returns the first text-like part, or "" when the message has none.
func (m Message) Text() string {
	for _, p := range m.Content {
		switch v := p.(type) {
		case TextPart:
			return v.Text
		case InputTextPart:
			return v.Text
		case InputImagePart:
			// keep scanning; an outgoing message always leads with text
		}
	}
	return ""
}

// Images returns the data URLs of all image parts in order.
func (m Message) Images() []string {
	var urls []string
	for _, p := range m.Content {
		if img, ok := p.(InputImagePart); ok {
			urls = append(urls, img.ImageURL)
		}
	}
	return urls
}

// IsEmpty reports whether the message carries neither text nor images.
func (m Message) IsEmpty() bool {
	for _, p := range m.Content {
		switch v := p.(type) {
		case TextPart:
			if v.Text != "" {
				return false
			}
		case InputTextPart:
			if v.Text != "" {
				return false
			}
		case InputImagePart:
			if v.ImageURL != "" {
				return false
			}
		}
	}
	return true
}

// wirePart matches the backend's flat tagged shape.
type wirePart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type wireMessage struct {
	Role    string     `json:"role"`
	Content []wirePart `json:"content"`
}

// MarshalJSON encodes the tagged union exactly as the backend expects:
// {"type":"text"|"input_text","text":...} or {"type":"input_image","image_url":...}.
func (m Message) MarshalJSON() ([]byte, error) {
	w := wireMessage{Role: m.Role, Content: make([]wirePart, 0, len(m.Content))}
	for _, p := range m.Content {
		switch v := p.(type) {
		case TextPart:
			w.Content = append(w.Content, wirePart{Type: PartTypeText, Text: v.Text})
		case InputTextPart:
			w.Content = append(w.Content, wirePart{Type: PartTypeInputText, Text: v.Text})
		case InputImagePart:
			w.Content = append(w.Content, wirePart{Type: PartTypeInputImage, ImageURL: v.ImageURL})
		default:
			return nil, fmt.Errorf("marshal message: unknown content part %T", p)
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the tagged union; an unrecognized type tag is an error
// rather than a silently dropped part.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parts := make([]ContentPart, 0, len(w.Content))
	for _, p := range w.Content {
		switch p.Type {
		case PartTypeText:
			parts = append(parts, TextPart{Text: p.Text})
		case PartTypeInputText:
			parts = append(parts, InputTextPart{Text: p.Text})
		case PartTypeInputImage:
			parts = append(parts, InputImagePart{ImageURL: p.ImageURL})
		default:
			return fmt.Errorf("unmarshal message: unknown content part type %q", p.Type)
		}
	}
	m.Role = w.Role
	m.Content = parts
	return nil
}
