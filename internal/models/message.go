package models

// Message is a single entry in the conversation log. Content is nil only
// while the paired assistant response is still pending.
type Message struct {
	ID      string  `json:"-"`
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// Text returns the message content, or "" when it is still pending.
func (m *Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// Pending reports whether the message is an unresolved assistant placeholder.
func (m *Message) Pending() bool {
	return m.Role == RoleAssistant && m.Content == nil
}

// Citation is the canonical form of a source reference attached to a
// response. Page is optional; empty means the upstream payload carried none.
type Citation struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Page   string `json:"page,omitempty"`
}

// SourcePage formats the citation origin for display.
func (c Citation) SourcePage() string {
	if c.Page == "" {
		return c.Source
	}
	return c.Source + " - Page: " + c.Page
}

// MessageMeta holds per-turn metadata keyed by the turn id. Exactly one
// exists per user/assistant pair and it outlives the messages it describes.
type MessageMeta struct {
	Status          string
	ErrorMessage    string
	FeedbackValue   *int // 0 or 1 once feedback was given, nil before
	Citations       []Citation
	Latency         float64
	TokenCount      int
	ConfidenceScore float64
	AssociationID   string
}

// HasFeedback reports whether the given value was already recorded.
func (m *MessageMeta) HasFeedback(value int) bool {
	return m.FeedbackValue != nil && *m.FeedbackValue == value
}

// Terminal reports whether the turn reached COMPLETED or ERROR.
func (m *MessageMeta) Terminal() bool {
	return m.Status == StatusCompleted || m.Status == StatusError
}

// StringPtr is a small helper for building Message values.
func StringPtr(s string) *string {
	return &s
}
