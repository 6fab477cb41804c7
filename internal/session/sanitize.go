package session

import "github.com/diogo/deploychat/internal/models"

// SanitizeForRequest strips internal metadata from the conversation log so
// only role/content pairs leave the process; the chat-completions schema
// rejects anything else. A nil-content assistant placeholder is dropped
// together with its paired user message, since a half-finished turn must
// never be replayed to the backend. Idempotent.
func SanitizeForRequest(messages []models.Message) []models.ChatMessage {
	sanitized := make([]models.ChatMessage, 0, len(messages))
	for i, msg := range messages {
		if msg.Content == nil {
			if i > 0 && messages[i-1].ID == msg.ID && len(sanitized) > 0 {
				sanitized = sanitized[:len(sanitized)-1]
			}
			continue
		}
		sanitized = append(sanitized, models.ChatMessage{
			Role:    msg.Role,
			Content: *msg.Content,
		})
	}
	return sanitized
}

// SanitizedHistory returns the current conversation in outbound wire form.
func (s *Session) SanitizedHistory() []models.ChatMessage {
	return SanitizeForRequest(s.Messages())
}

// HistoryForRequest builds the wire history for serving the given turn:
// prior completed turns plus the turn's own user prompt. Errored turns
// are excluded; their assistant content was never model output and must
// not be replayed.
func (s *Session) HistoryForRequest(id string) []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ChatMessage, 0, len(s.messages))
	for _, msg := range s.messages {
		if msg.Content == nil {
			continue
		}
		if msg.ID != "" && msg.ID != id {
			if meta := s.meta[msg.ID]; meta != nil && meta.Status == models.StatusError {
				continue
			}
		}
		out = append(out, models.ChatMessage{
			Role:    msg.Role,
			Content: *msg.Content,
		})
	}
	return out
}
