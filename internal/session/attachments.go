package session

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Attachment 待发送的本地图片，预览为 data URL
// Attachment is a locally-held image pending inclusion in the next outgoing
// message. Preview is a data URL owned by the manager until the message is
// sent (the message gets its own copy) or the attachment is removed.
type Attachment struct {
	ID      string
	Path    string
	MIME    string
	Preview string

	released bool
}

// ReleaseFunc reclaims one attachment's preview resource. It runs exactly
// once per attachment.
type ReleaseFunc func(*Attachment)

// Attachments buffers user-selected images prior to send, validates they
// are images, and reclaims previews on removal.
type Attachments struct {
	mu      sync.Mutex
	items   []*Attachment
	release ReleaseFunc
	log     zerolog.Logger
}

func NewAttachments(log zerolog.Logger) *Attachments {
	return &Attachments{
		release: func(a *Attachment) { a.Preview = "" },
		log:     log.With().Str("component", "attachments").Logger(),
	}
}

// SetReleaseFunc overrides the preview release hook.
func (m *Attachments) SetReleaseFunc(fn ReleaseFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn != nil {
		m.release = fn
	}
}

// AddFiles reads the given image files into data-URL previews. Files that
// are not images are rejected and logged; accepted files of the batch are
// appended together once every read has settled.
func (m *Attachments) AddFiles(paths ...string) error {
	var batch []*Attachment
	for _, path := range paths {
		att, err := loadAttachment(path)
		if err != nil {
			m.log.Warn().Err(err).Str("file", path).Msg("attachment rejected")
			continue
		}
		batch = append(batch, att)
	}
	if len(batch) == 0 {
		if len(paths) > 0 {
			return fmt.Errorf("no valid image files among %d selected", len(paths))
		}
		return nil
	}
	m.mu.Lock()
	m.items = append(m.items, batch...)
	m.mu.Unlock()
	return nil
}

func loadAttachment(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("not an image (detected %s)", mime)
	}
	preview := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	return &Attachment{
		ID:      uuid.NewString(),
		Path:    path,
		MIME:    mime,
		Preview: preview,
	}, nil
}

// RemoveAt releases the attachment at index and removes it from the set.
// An out-of-range index is a no-op.
func (m *Attachments) RemoveAt(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.items) {
		return
	}
	m.releaseLocked(m.items[index])
	m.items = append(m.items[:index], m.items[index+1:]...)
}

// ClearAll releases every held attachment. Runs after each send settles
// (success, failure or cancellation) and when vision mode turns off.
func (m *Attachments) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, att := range m.items {
		m.releaseLocked(att)
	}
	m.items = nil
}

// releaseLocked revokes one preview exactly once.
func (m *Attachments) releaseLocked(att *Attachment) {
	if att.released {
		return
	}
	att.released = true
	m.release(att)
}

// List returns copies of the held attachments in order.
func (m *Attachments) List() []Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Attachment, len(m.items))
	for i, att := range m.items {
		out[i] = *att
	}
	return out
}

// Count returns the number of held attachments.
func (m *Attachments) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// PreviewURLs returns the data URLs of the held attachments in order.
func (m *Attachments) PreviewURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	urls := make([]string, len(m.items))
	for i, att := range m.items {
		urls[i] = att.Preview
	}
	return urls
}
