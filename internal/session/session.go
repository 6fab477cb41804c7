// Package session holds the conversation state for one chat session: the
// ordered message log, per-turn metadata and the pending-turn marker.
//
// A session is an explicit object passed by handle through every call.
// State is scoped to one conversation; nothing is shared across sessions.
package session

import (
	"sync"

	"github.com/google/uuid"

	apierrors "github.com/diogo/deploychat/internal/errors"
	"github.com/diogo/deploychat/internal/models"
)

// Session is the conversation state machine. Mutation is effectively
// single-threaded (one user action at a time) but the TUI delivers
// completion events from command goroutines, so access is mutex-guarded.
type Session struct {
	mu        sync.RWMutex
	messages  []models.Message
	meta      map[string]*models.MessageMeta
	pendingID string
}

// New creates an empty session. A non-empty systemPrompt seeds the
// conversation with a leading system message.
func New(systemPrompt string) *Session {
	s := &Session{
		meta: make(map[string]*models.MessageMeta),
	}
	if systemPrompt != "" {
		s.messages = append(s.messages, models.Message{
			Role:    models.RoleSystem,
			Content: models.StringPtr(systemPrompt),
		})
	}
	return s
}

// AppendUserPrompt starts a new turn: it appends the user message,
// initializes its metadata as PENDING and appends the nil-content
// assistant placeholder. It fails without mutating anything when a turn
// is already in flight.
func (s *Session) AppendUserPrompt(text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingID != "" {
		return "", apierrors.NewStateError("cannot submit a prompt while a turn is pending")
	}

	id := uuid.NewString()
	s.messages = append(s.messages,
		models.Message{ID: id, Role: models.RoleUser, Content: models.StringPtr(text)},
		models.Message{ID: id, Role: models.RoleAssistant, Content: nil},
	)
	s.meta[id] = &models.MessageMeta{
		Status:        models.StatusPending,
		AssociationID: id,
	}
	s.pendingID = id
	return id, nil
}

// CompleteOptions carries the optional result data merged into a turn's
// metadata when it reaches a terminal state.
type CompleteOptions struct {
	Citations []models.Citation
	// ExtraOutput is the raw extra model output row; recognized metric
	// keys and the association-id column are merged into the metadata.
	ExtraOutput map[string]any
	// AssociationColumn names the column the backend echoes the
	// correlation id under, "" when the deployment defines none.
	AssociationColumn string
	Error             string
}

// CompleteTurn resolves a turn: fills the assistant placeholder content,
// writes the terminal status and merges citations/metrics/error into the
// metadata. Re-completion is last write wins; the dispatcher calls this
// at most once per turn in normal operation.
func (s *Session) CompleteTurn(id, content, status string, opts CompleteOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.meta[id]
	if !ok {
		return apierrors.ErrUnknownTurn
	}

	for i := range s.messages {
		if s.messages[i].ID == id && s.messages[i].Role == models.RoleAssistant {
			s.messages[i].Content = models.StringPtr(content)
			break
		}
	}

	meta.Status = status
	if len(opts.Citations) > 0 {
		meta.Citations = opts.Citations
	}
	if opts.Error != "" {
		meta.ErrorMessage = opts.Error
	}
	mergeExtraOutput(meta, opts)

	if s.pendingID == id {
		s.pendingID = ""
	}
	return nil
}

// mergeExtraOutput copies recognized metric keys from the raw extra model
// output into the turn metadata.
func mergeExtraOutput(meta *models.MessageMeta, opts CompleteOptions) {
	extra := opts.ExtraOutput
	if extra == nil {
		return
	}
	if v, ok := toFloat(extra[models.ExtraKeyLatency]); ok {
		meta.Latency = v
	}
	if v, ok := toFloat(extra[models.ExtraKeyTokenCount]); ok {
		meta.TokenCount = int(v)
	}
	if v, ok := toFloat(extra[models.ExtraKeyConfidence]); ok {
		meta.ConfidenceScore = v
	}
	if opts.AssociationColumn != "" {
		if v, ok := extra[opts.AssociationColumn].(string); ok && v != "" {
			meta.AssociationID = v
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

// GetByRole returns the message with the given role and turn id, or nil.
// Linear scan; conversations stay small.
func (s *Session) GetByRole(role, id string) *models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.messages {
		if s.messages[i].ID == id && s.messages[i].Role == role {
			msg := s.messages[i]
			return &msg
		}
	}
	return nil
}

// Meta returns the metadata for a turn, or nil when the id is unknown.
// The returned pointer is live; callers mutate it only through Session
// methods.
func (s *Session) Meta(id string) *models.MessageMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta[id]
}

// Messages returns a copy of the conversation log in order.
func (s *Session) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// PendingID returns the id of the in-flight turn, or "".
func (s *Session) PendingID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingID
}

// RecordFeedback stores a feedback value on a turn and reports whether it
// changed. Re-submitting the already stored value is a no-op, which is
// what keeps duplicate outbound telemetry calls from firing.
func (s *Session) RecordFeedback(id string, value int) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.meta[id]
	if !ok {
		return false, apierrors.ErrUnknownTurn
	}
	if meta.HasFeedback(value) {
		return false, nil
	}
	v := value
	meta.FeedbackValue = &v
	return true, nil
}

// TurnCount returns the number of turns started in this session.
func (s *Session) TurnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meta)
}
