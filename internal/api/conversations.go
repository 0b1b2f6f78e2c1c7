package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"moia/internal/chat"
)

// conversationIDHeader carries the id of a conversation the backend created
// for the first message of an unsaved session.
const conversationIDHeader = "X-Conversation-Id"

// ChatRequest 一次聊天补全请求
// ChatRequest is one chat completion request.
type ChatRequest struct {
	Messages       []chat.Message `json:"messages"`
	VisionEnabled  bool           `json:"visionEnabled"`
	ConversationID *string        `json:"conversationId"`
}

// ChatResponse carries the assistant reply and the conversation id the
// backend filed it under (equal to the request's id unless the backend
// created a new conversation).
type ChatResponse struct {
	Reply          string
	ConversationID string
}

// Conversations lists the signed-in user's conversation summaries.
func (c *Client) Conversations(ctx context.Context) ([]chat.Conversation, error) {
	var out []chat.Conversation
	if err := c.doJSON(ctx, http.MethodGet, "/dashboard/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Conversation fetches the full transcript for one conversation.
func (c *Client) Conversation(ctx context.Context, id string) ([]chat.Message, error) {
	var out struct {
		Messages []chat.Message `json:"messages"`
	}
	path := "/dashboard/conversation?id=" + url.QueryEscape(id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// DeleteConversation removes a conversation server-side.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	path := "/dashboard/conversation?id=" + url.QueryEscape(id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// Chat sends the transcript and returns the assistant reply. The reply is
// the whole response body; a new conversation id arrives in the
// X-Conversation-Id header. Cancellation of ctx aborts the request.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	resp, body, err := c.do(ctx, http.MethodPost, "/dashboard/chat", req)
	if err != nil {
		return ChatResponse{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ChatResponse{}, decodeError(resp.StatusCode, body)
	}

	out := ChatResponse{Reply: string(body)}
	if id := strings.TrimSpace(resp.Header.Get(conversationIDHeader)); id != "" {
		out.ConversationID = id
	} else if req.ConversationID != nil {
		out.ConversationID = *req.ConversationID
	}
	return out, nil
}
