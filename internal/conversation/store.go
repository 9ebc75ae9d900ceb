// Package conversation implements the capacity-bounded conversation store on
// top of the generic key-value medium. The store owns conversation records
// exclusively; pipeline components only ever see transient text.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/apexmarketer-ai/apex/internal/kv"
	"github.com/apexmarketer-ai/apex/internal/model"
)

const (
	storageKey = "apexmarketer-conversations"
	currentKey = "apexmarketer-current-conversation"

	// MaxConversations bounds the index; the oldest entry is evicted beyond it.
	MaxConversations = 50

	// DefaultTitle is the sentinel replaced once by a derived title.
	DefaultTitle = "New Conversation"

	maxTitleLen = 40
)

// Store persists conversations in the key-value medium, most-recently-touched
// first, with a separately tracked current-conversation pointer. A nil medium
// degrades to empty-list / no-op behavior.
type Store struct {
	kv     kv.Store
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Store over the given medium. medium may be nil.
func New(medium kv.Store, logger *slog.Logger) *Store {
	return &Store{kv: medium, logger: logger, now: time.Now}
}

// ListAll returns every stored conversation, most recent first. Storage
// errors degrade to an empty list; they are logged, never raised.
func (s *Store) ListAll(ctx context.Context) []model.Conversation {
	if s.kv == nil {
		return []model.Conversation{}
	}
	raw, ok, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		s.logger.Warn("conversation: load index", "error", err)
		return []model.Conversation{}
	}
	if !ok {
		return []model.Conversation{}
	}
	var conversations []model.Conversation
	if err := json.Unmarshal([]byte(raw), &conversations); err != nil {
		s.logger.Warn("conversation: decode index", "error", err)
		return []model.Conversation{}
	}
	return conversations
}

// Save upserts a conversation by id. New ids are prepended; the index is
// trimmed to MaxConversations, evicting the oldest entries.
func (s *Store) Save(ctx context.Context, conv model.Conversation) error {
	if s.kv == nil {
		return nil
	}
	conversations := s.ListAll(ctx)

	replaced := false
	for i := range conversations {
		if conversations[i].ID == conv.ID {
			conversations[i] = conv
			replaced = true
			break
		}
	}
	if !replaced {
		conversations = append([]model.Conversation{conv}, conversations...)
	}
	if len(conversations) > MaxConversations {
		conversations = conversations[:MaxConversations]
	}

	return s.writeIndex(ctx, conversations)
}

// Get returns the conversation with the given id.
func (s *Store) Get(ctx context.Context, id string) (model.Conversation, bool) {
	for _, c := range s.ListAll(ctx) {
		if c.ID == id {
			return c, true
		}
	}
	return model.Conversation{}, false
}

// Delete removes the conversation with the given id. The current pointer is
// a weak reference: when it names the deleted conversation it is cleared, so
// it never dangles.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.kv == nil {
		return nil
	}
	conversations := s.ListAll(ctx)
	filtered := conversations[:0:0]
	for _, c := range conversations {
		if c.ID != id {
			filtered = append(filtered, c)
		}
	}
	if err := s.writeIndex(ctx, filtered); err != nil {
		return err
	}
	if s.CurrentID(ctx) == id {
		return s.SetCurrentID(ctx, "")
	}
	return nil
}

// CurrentID returns the current-conversation pointer, or "" when unset. The
// referenced conversation may be absent from the index; callers must treat
// the pointer as a lookup hint, not a guarantee.
func (s *Store) CurrentID(ctx context.Context) string {
	if s.kv == nil {
		return ""
	}
	id, ok, err := s.kv.Get(ctx, currentKey)
	if err != nil {
		s.logger.Warn("conversation: load current pointer", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

// SetCurrentID updates the current-conversation pointer; "" clears it.
func (s *Store) SetCurrentID(ctx context.Context, id string) error {
	if s.kv == nil {
		return nil
	}
	if id == "" {
		if err := s.kv.Remove(ctx, currentKey); err != nil {
			return fmt.Errorf("conversation: clear current pointer: %w", err)
		}
		return nil
	}
	if err := s.kv.Set(ctx, currentKey, id); err != nil {
		return fmt.Errorf("conversation: set current pointer: %w", err)
	}
	return nil
}

// CreateNew returns a fresh, unsaved conversation with a unique id, the
// default title, and no messages.
func (s *Store) CreateNew() model.Conversation {
	now := s.now().UTC()
	return model.Conversation{
		ID:        uuid.New().String(),
		Title:     DefaultTitle,
		Messages:  []model.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendTurn records a completed user/assistant exchange on the conversation
// with the given id, creating it when absent, and makes it current. The
// title is derived once, on the first completed turn. It returns the
// conversation as stored.
func (s *Store) AppendTurn(ctx context.Context, id string, userMsg, assistantMsg model.Message) (model.Conversation, error) {
	conv, ok := s.Get(ctx, id)
	if !ok {
		conv = s.CreateNew()
		if id != "" {
			conv.ID = id
		}
	}
	conv.Messages = append(conv.Messages, userMsg, assistantMsg)
	conv.UpdatedAt = s.now().UTC()
	if conv.Title == DefaultTitle && len(conv.Messages) >= 2 {
		conv.Title = GenerateTitle(conv.Messages)
	}
	if err := s.Save(ctx, conv); err != nil {
		return model.Conversation{}, err
	}
	if err := s.SetCurrentID(ctx, conv.ID); err != nil {
		return model.Conversation{}, err
	}
	return conv, nil
}

// GenerateTitle derives a conversation title from the first user message:
// verbatim when it fits in 40 characters, otherwise truncated to 37 plus an
// ellipsis. Returns DefaultTitle when no user message exists.
func GenerateTitle(messages []model.Message) string {
	for _, m := range messages {
		if m.Role != model.RoleUser {
			continue
		}
		content := strings.TrimSpace(m.Content)
		// Character counts, not bytes: a multibyte message must not be cut
		// mid-rune.
		if utf8.RuneCountInString(content) <= maxTitleLen {
			return content
		}
		return string([]rune(content)[:maxTitleLen-3]) + "..."
	}
	return DefaultTitle
}

func (s *Store) writeIndex(ctx context.Context, conversations []model.Conversation) error {
	raw, err := json.Marshal(conversations)
	if err != nil {
		return fmt.Errorf("conversation: encode index: %w", err)
	}
	if err := s.kv.Set(ctx, storageKey, string(raw)); err != nil {
		return fmt.Errorf("conversation: store index: %w", err)
	}
	return nil
}
