package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"moia/internal/chat"

	_ "modernc.org/sqlite"
)

// Cache 基于 SQLite (WAL 模式) 的本地只读缓存：会话摘要与消息记录
// Cache is a local SQLite (WAL mode) read-through cache of conversation
// summaries and transcripts. The backend stays authoritative; the cache only
// makes the sidebar and transcript render instantly and survive offline
// starts. Every write mirrors a confirmed backend state.
type Cache struct {
	db   *sql.DB
	path string
}

// Open creates and initializes the cache database.
func Open(dbPath string) (*Cache, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("cache db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	c := &Cache{db: db, path: dbPath}
	if err := c.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return c, nil
}

func (c *Cache) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		date       TEXT NOT NULL DEFAULT '',
		cached_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		role            TEXT NOT NULL,
		content         TEXT NOT NULL DEFAULT '[]',
		cached_at       TEXT NOT NULL,
		UNIQUE(conversation_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close 关闭数据库连接 / Close the database connection
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// ReplaceConversations mirrors a fresh backend conversation list. Cached
// transcripts of conversations that disappeared server-side are dropped by
// the foreign key cascade.
func (c *Cache) ReplaceConversations(convs []chat.Conversation) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM conversations"); err != nil {
		return fmt.Errorf("clear conversations: %w", err)
	}
	now := nowUTC()
	for _, cv := range convs {
		if _, err := tx.Exec(
			"INSERT INTO conversations(id, title, date, cached_at) VALUES(?,?,?,?)",
			cv.ID, cv.Title, cv.Date, now,
		); err != nil {
			return fmt.Errorf("insert conversation %s: %w", cv.ID, err)
		}
	}
	return tx.Commit()
}

// ListConversations returns the cached summaries, newest first by date.
func (c *Cache) ListConversations() ([]chat.Conversation, error) {
	rows, err := c.db.Query("SELECT id, title, date FROM conversations ORDER BY date DESC")
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []chat.Conversation
	for rows.Next() {
		var cv chat.Conversation
		if err := rows.Scan(&cv.ID, &cv.Title, &cv.Date); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

// DeleteConversation removes one conversation and its cached transcript.
func (c *Cache) DeleteConversation(id string) error {
	if _, err := c.db.Exec("DELETE FROM conversations WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}

// SaveTranscript replaces the cached transcript for one conversation. The
// conversation row is upserted so a transcript can be cached before the next
// list refresh lands.
func (c *Cache) SaveTranscript(conversationID string, messages []chat.Message) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := nowUTC()
	if _, err := tx.Exec(
		"INSERT INTO conversations(id, title, date, cached_at) VALUES(?,?,?,?) ON CONFLICT(id) DO NOTHING",
		conversationID, "", now, now,
	); err != nil {
		return fmt.Errorf("upsert conversation %s: %w", conversationID, err)
	}
	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("clear transcript %s: %w", conversationID, err)
	}
	for seq, msg := range messages {
		content, err := encodeContent(msg)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO messages(conversation_id, seq, role, content, cached_at) VALUES(?,?,?,?,?)",
			conversationID, seq, msg.Role, content, now,
		); err != nil {
			return fmt.Errorf("insert message %s/%d: %w", conversationID, seq, err)
		}
	}
	return tx.Commit()
}

// LoadTranscript returns the cached transcript in order. A conversation with
// nothing cached yields an empty slice, not an error.
func (c *Cache) LoadTranscript(conversationID string) ([]chat.Message, error) {
	rows, err := c.db.Query(
		"SELECT role, content FROM messages WHERE conversation_id = ? ORDER BY seq",
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transcript %s: %w", conversationID, err)
	}
	defer rows.Close()

	var out []chat.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg, err := decodeContent(role, content)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func encodeContent(msg chat.Message) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode message content: %w", err)
	}
	return string(data), nil
}

func decodeContent(role, content string) (chat.Message, error) {
	var msg chat.Message
	if err := json.Unmarshal([]byte(content), &msg); err != nil {
		return chat.Message{}, fmt.Errorf("decode cached message: %w", err)
	}
	if msg.Role == "" {
		msg.Role = role
	}
	return msg, nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
