package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"moia/internal/chat"
)

// Directory 侧栏会话目录
// Directory maintains the list of conversation summaries shown in
// navigation. The backend stays authoritative; the local cache primes the
// list so the sidebar paints before the first refresh lands.
type Directory struct {
	backend Backend
	cache   TranscriptCache
	session *Session
	log     zerolog.Logger

	mu            sync.Mutex
	conversations []chat.Conversation
	loading       bool // true until the first refresh settles
}

func NewDirectory(backend Backend, cache TranscriptCache, session *Session, log zerolog.Logger) *Directory {
	d := &Directory{
		backend: backend,
		cache:   cache,
		session: session,
		log:     log.With().Str("component", "directory").Logger(),
		loading: true,
	}
	d.primeFromCache()
	return d
}

// primeFromCache seeds the list from the local cache. A non-empty cached
// list puts the directory straight into the ready state.
func (d *Directory) primeFromCache() {
	if d.cache == nil {
		return
	}
	convs, err := d.cache.ListConversations()
	if err != nil {
		d.log.Warn().Err(err).Msg("read cached conversations")
		return
	}
	if len(convs) == 0 {
		return
	}
	d.mu.Lock()
	d.conversations = convs
	d.loading = false
	d.mu.Unlock()
}

// Conversations returns a copy of the known summaries.
func (d *Directory) Conversations() []chat.Conversation {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]chat.Conversation, len(d.conversations))
	copy(out, d.conversations)
	return out
}

// Loading reports whether the first population is still pending.
func (d *Directory) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// Refresh fetches the conversation list from the backend. The loading flag
// is raised only while the list is still empty, so background refreshes
// never flicker an already-populated sidebar. On failure the existing list
// stays untouched and the error is only logged and returned.
func (d *Directory) Refresh(ctx context.Context) error {
	if d.backend == nil {
		return ErrNotReady
	}

	d.mu.Lock()
	if len(d.conversations) == 0 {
		d.loading = true
	}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.loading = false
		d.mu.Unlock()
	}()

	convs, err := d.backend.Conversations(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("refresh conversations")
		return err
	}

	d.mu.Lock()
	d.conversations = convs
	d.mu.Unlock()

	if d.cache != nil {
		if err := d.cache.ReplaceConversations(convs); err != nil {
			d.log.Warn().Err(err).Msg("cache conversations")
		}
	}
	return nil
}

// Select opens the conversation in the session (cached transcript first for
// an instant paint, then the authoritative fetch).
func (d *Directory) Select(ctx context.Context, id string) error {
	if d.session == nil {
		return ErrNotReady
	}
	d.session.LoadCached(id)
	return d.session.Load(ctx, id)
}

// Remove deletes a conversation: the entry leaves the in-memory list and
// the cache immediately, then the backend delete is issued. A backend
// failure is logged but not compensated; the next refresh reconciles. When
// the removed conversation is the open one the session resets to a new
// unsaved conversation.
func (d *Directory) Remove(ctx context.Context, id string) error {
	if d.backend == nil {
		return ErrNotReady
	}

	d.mu.Lock()
	kept := d.conversations[:0]
	for _, cv := range d.conversations {
		if cv.ID != id {
			kept = append(kept, cv)
		}
	}
	d.conversations = kept
	d.mu.Unlock()

	if d.cache != nil {
		if err := d.cache.DeleteConversation(id); err != nil {
			d.log.Warn().Err(err).Str("conversation", id).Msg("drop cached conversation")
		}
	}

	if d.session != nil && d.session.ConversationID() == id {
		d.session.StartNew()
	}

	if err := d.backend.DeleteConversation(ctx, id); err != nil {
		d.log.Error().Err(err).Str("conversation", id).Msg("delete conversation")
		return err
	}
	return nil
}
