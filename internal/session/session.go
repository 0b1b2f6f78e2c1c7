package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"moia/internal/api"
	"moia/internal/chat"
)

// ErrNotReady means a coordinator was used before its collaborators were
// wired. Operations fail loudly instead of quietly doing nothing.
var ErrNotReady = errors.New("chat coordinator not initialized")

// Backend is the slice of the API client the coordination core needs.
type Backend interface {
	Conversations(ctx context.Context) ([]chat.Conversation, error)
	Conversation(ctx context.Context, id string) ([]chat.Message, error)
	DeleteConversation(ctx context.Context, id string) error
	Chat(ctx context.Context, req api.ChatRequest) (api.ChatResponse, error)
}

// TranscriptCache is the write-through cache surface the core uses. A nil
// cache disables caching.
type TranscriptCache interface {
	ReplaceConversations(convs []chat.Conversation) error
	ListConversations() ([]chat.Conversation, error)
	DeleteConversation(id string) error
	SaveTranscript(conversationID string, messages []chat.Message) error
	LoadTranscript(conversationID string) ([]chat.Message, error)
}

// Session 当前打开会话的唯一事实来源
// Session owns the single source of truth for the open conversation: the
// ordered transcript, the unsaved-conversation marker, the draft, the
// loading flags and the vision toggle. All mutation goes through methods;
// surfaces read via Snapshot.
type Session struct {
	mu sync.Mutex

	backend Backend
	cache   TranscriptCache
	log     zerolog.Logger

	conversationID  string // "" = unsaved/new conversation
	messages        []chat.Message
	draft           string
	loading         bool // a send is in flight
	messagesLoading bool // a transcript load is in flight
	visionEnabled   bool

	attachments *Attachments
}

// Snapshot is an immutable copy of session state for rendering.
type Snapshot struct {
	ConversationID  string
	Messages        []chat.Message
	Draft           string
	Loading         bool
	MessagesLoading bool
	VisionEnabled   bool
	Attachments     []Attachment
}

func NewSession(backend Backend, cache TranscriptCache, log zerolog.Logger) *Session {
	return &Session{
		backend:     backend,
		cache:       cache,
		log:         log.With().Str("component", "session").Logger(),
		attachments: NewAttachments(log),
	}
}

// Attachments returns the attachment manager owned by this session.
func (s *Session) Attachments() *Attachments {
	return s.attachments
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]chat.Message, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{
		ConversationID:  s.conversationID,
		Messages:        msgs,
		Draft:           s.draft,
		Loading:         s.loading,
		MessagesLoading: s.messagesLoading,
		VisionEnabled:   s.visionEnabled,
		Attachments:     s.attachments.List(),
	}
}

// StartNew clears the transcript and marks the session unsaved. No network
// call happens.
func (s *Session) StartNew() {
	s.mu.Lock()
	s.messages = nil
	s.conversationID = ""
	s.draft = ""
	s.mu.Unlock()
}

// Load fetches the full transcript for id and makes it the open
// conversation. On failure the prior state stays intact; the error is
// logged and returned.
func (s *Session) Load(ctx context.Context, id string) error {
	if s.backend == nil {
		return ErrNotReady
	}
	s.mu.Lock()
	s.messagesLoading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.messagesLoading = false
		s.mu.Unlock()
	}()

	msgs, err := s.backend.Conversation(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("conversation", id).Msg("load conversation")
		return err
	}

	s.mu.Lock()
	s.messages = msgs
	s.conversationID = id
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.SaveTranscript(id, msgs); err != nil {
			s.log.Warn().Err(err).Str("conversation", id).Msg("cache transcript")
		}
	}
	return nil
}

// LoadCached replaces the transcript with whatever the local cache holds
// for id, without touching the backend. Used for instant paint before Load.
func (s *Session) LoadCached(id string) {
	if s.cache == nil {
		return
	}
	msgs, err := s.cache.LoadTranscript(id)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation", id).Msg("read cached transcript")
		return
	}
	if len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	s.messages = msgs
	s.conversationID = id
	s.mu.Unlock()
}

// SetDraft stores the in-progress draft text.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	s.mu.Unlock()
}

// SetVision toggles vision mode. Disabling it clears all attachments, so
// the held-attachment count is zero whenever vision is off.
func (s *Session) SetVision(enabled bool) {
	s.mu.Lock()
	s.visionEnabled = enabled
	s.mu.Unlock()
	if !enabled {
		s.attachments.ClearAll()
	}
}

// VisionEnabled reports the current vision toggle.
func (s *Session) VisionEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visionEnabled
}

// ConversationID returns the open conversation id ("" when unsaved).
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]chat.Message, len(s.messages))
	copy(msgs, s.messages)
	return msgs
}

// Loading reports whether a send is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// buildDraft assembles the outgoing user message from text and, when vision
// is on, the pending attachment previews. The previews are copied by value:
// clearing the attachment set afterwards does not touch the sent message.
func (s *Session) buildDraft(text string) chat.Message {
	s.mu.Lock()
	vision := s.visionEnabled
	s.mu.Unlock()
	if !vision {
		return chat.NewUserText(text)
	}
	return chat.NewUserVision(text, s.attachments.PreviewURLs())
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) setConversationID(id string) {
	s.mu.Lock()
	s.conversationID = id
	s.mu.Unlock()
}

func (s *Session) clearDraft() {
	s.mu.Lock()
	s.draft = ""
	s.mu.Unlock()
}

// appendOutgoing appends the optimistic local echo before the round-trip
// resolves.
func (s *Session) appendOutgoing(msg chat.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

// appendIncoming appends the assistant's completed reply.
func (s *Session) appendIncoming(msg chat.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

// rollbackLastAppend removes the most recently appended message. Only the
// user-cancelled send path calls this, to erase the optimistic echo.
func (s *Session) rollbackLastAppend() {
	s.mu.Lock()
	if n := len(s.messages); n > 0 {
		s.messages = s.messages[:n-1]
	}
	s.mu.Unlock()
}
