package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"moia/internal/api"
	"moia/internal/chat"
	"moia/internal/defaults"
)

// Controller 请求生命周期控制器：同一时刻至多一个在途聊天请求
// Controller coordinates at most one outstanding chat request at a time and
// reconciles its outcome with the session. The same entry point that issues
// a send cancels it when one is already in flight (toggle semantics), so a
// single user-facing control drives both.
type Controller struct {
	session   *Session
	directory *Directory
	backend   Backend
	cache     TranscriptCache
	log       zerolog.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc // single in-flight token; nil when idle
	cancelled bool
}

func NewController(s *Session, d *Directory, backend Backend, cache TranscriptCache, log zerolog.Logger) *Controller {
	return &Controller{
		session:   s,
		directory: d,
		backend:   backend,
		cache:     cache,
		log:       log.With().Str("component", "controller").Logger(),
	}
}

// InFlight reports whether a send is outstanding.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Send issues one chat request for the given draft text, blocking until the
// send settles. Calling Send while a request is in flight cancels that
// request instead of starting a second one. An empty draft (no text and no
// attachments) is a no-op.
//
// The full contract, in order: optimistic echo, single cancellable request
// carrying the formatting instruction plus the whole transcript, adoption
// of a backend-assigned conversation id (with a fire-and-forget directory
// refresh), reply append on success, echo rollback on user cancellation
// only, and unconditional cleanup of the loading flag, draft and
// attachments.
func (c *Controller) Send(ctx context.Context, text string) error {
	if c.session == nil || c.backend == nil {
		return ErrNotReady
	}

	c.mu.Lock()
	if c.cancel != nil {
		// Toggle: reinterpret as cancellation of the in-flight request.
		c.cancelled = true
		cancel := c.cancel
		c.mu.Unlock()
		cancel()
		return nil
	}

	draft := c.session.buildDraft(text)
	if draft.IsEmpty() {
		c.mu.Unlock()
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.cancelled = false
	c.mu.Unlock()

	c.session.SetDraft(text)
	c.session.setLoading(true)
	c.session.appendOutgoing(draft)

	defer func() {
		c.session.setLoading(false)
		c.session.clearDraft()
		c.session.Attachments().ClearAll()

		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
		cancel()
	}()

	convID := c.session.ConversationID()
	var idPtr *string
	if convID != "" {
		idPtr = &convID
	}

	messages := append(
		[]chat.Message{chat.NewSystemText(defaults.FormattingPrompt)},
		c.session.Messages()...,
	)

	resp, err := c.backend.Chat(runCtx, api.ChatRequest{
		Messages:       messages,
		VisionEnabled:  c.session.VisionEnabled(),
		ConversationID: idPtr,
	})

	if c.wasCancelled() {
		// The user aborted. Whatever the transport reported, treat this
		// completion as cancelled and erase the optimistic echo.
		c.session.rollbackLastAppend()
		return nil
	}
	if err != nil {
		// Generic failure: the echo stays visible without a reply. Only an
		// explicit user cancel rolls it back.
		if !errors.Is(err, context.Canceled) {
			c.log.Error().Err(err).Msg("chat send failed")
		}
		return nil
	}

	if resp.ConversationID != "" && resp.ConversationID != convID {
		c.session.setConversationID(resp.ConversationID)
		if c.directory != nil {
			// Fire-and-forget so the sidebar picks up the new entry.
			go func() {
				if err := c.directory.Refresh(context.Background()); err != nil {
					c.log.Warn().Err(err).Msg("refresh after new conversation")
				}
			}()
		}
	}

	c.session.appendIncoming(chat.NewAssistantText(resp.Reply))

	if c.cache != nil {
		if id := c.session.ConversationID(); id != "" {
			if err := c.cache.SaveTranscript(id, c.session.Messages()); err != nil {
				c.log.Warn().Err(err).Str("conversation", id).Msg("cache transcript after send")
			}
		}
	}
	return nil
}

// Cancel aborts the in-flight request, if any. A cancel at idle is a no-op.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return
	}
	c.cancelled = true
	cancel := c.cancel
	c.mu.Unlock()
	cancel()
}

func (c *Controller) wasCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}
