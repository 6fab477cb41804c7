// Package dispatch drives a pending turn through one of the backend
// protocols and funnels every outcome, success or failure, into the
// session's terminal turn state.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/diogo/deploychat/internal/api"
	"github.com/diogo/deploychat/internal/citations"
	apierrors "github.com/diogo/deploychat/internal/errors"
	"github.com/diogo/deploychat/internal/models"
	"github.com/diogo/deploychat/internal/session"
)

// Protocol identifies which backend call shape serves a turn.
type Protocol int

const (
	ProtocolBatchPredict Protocol = iota
	ProtocolSyncChat
	ProtocolStreamingChat
)

func (p Protocol) String() string {
	switch p {
	case ProtocolSyncChat:
		return "chat"
	case ProtocolStreamingChat:
		return "chat-stream"
	default:
		return "predict"
	}
}

// Dispatcher resolves pending turns against the deployment backend.
type Dispatcher struct {
	client api.ClientInterface
	config *session.Config
	sess   *session.Session
}

// New creates a dispatcher bound to one session.
func New(client api.ClientInterface, config *session.Config, sess *session.Session) *Dispatcher {
	return &Dispatcher{client: client, config: config, sess: sess}
}

// SelectProtocol evaluates the protocol policy once for a turn:
// streaming chat when the chat API is enabled, supported and streaming is
// on; sync chat when only streaming is off; batch predict otherwise.
func (d *Dispatcher) SelectProtocol() Protocol {
	if d.config.ChatAPIEnabled && d.config.ChatAPISupported() {
		if d.config.StreamingEnabled {
			return ProtocolStreamingChat
		}
		return ProtocolSyncChat
	}
	return ProtocolBatchPredict
}

// Dispatch drives the turn with the given id to a terminal state. Backend
// and processing failures are recorded on the turn, never returned; the
// only error paths out of here are local ones (an unknown turn id).
// onDelta receives streaming content fragments and may be nil.
func (d *Dispatcher) Dispatch(id string, onDelta api.ChatStreamHandler) error {
	if d.sess.Meta(id) == nil {
		return apierrors.ErrUnknownTurn
	}

	switch d.SelectProtocol() {
	case ProtocolStreamingChat:
		d.runChat(id, true, onDelta)
	case ProtocolSyncChat:
		d.runChat(id, false, nil)
	default:
		d.runPredict(id)
	}
	return nil
}

// runPredict serves a turn over the batch prediction API.
func (d *Dispatcher) runPredict(id string) {
	dep, err := d.config.Deployment()
	if err != nil {
		d.completeError(id, err)
		return
	}

	msg := d.sess.GetByRole(models.RoleUser, id)
	if msg == nil {
		d.completeError(id, apierrors.ErrUnknownTurn)
		return
	}

	assocColumn := dep.AssociationIDColumnName()
	row := map[string]any{
		dep.PromptColumnName(): msg.Text(),
	}
	// Include the turn id so the backend can echo it back for correlation
	if assocColumn != "" {
		row[assocColumn] = id
	}

	result, _, err := d.client.Predict(row)
	if err != nil {
		d.completeError(id, err)
		return
	}

	processed := api.StripColumnSuffixes(result)

	cites, err := citations.FromRow(processed)
	if err != nil {
		d.completeError(id, apierrors.NewProcessingError("failed to process prediction citations", err))
		return
	}

	content, ok := processed[dep.ResultColumnName()].(string)
	if !ok {
		// predApi-shaped responses carry the value under "prediction"
		content, ok = processed["prediction"].(string)
	}
	if !ok {
		d.completeError(id, apierrors.NewProcessingError(
			fmt.Sprintf("result column %q not found in prediction response", dep.ResultColumnName()), nil))
		return
	}

	_ = d.sess.CompleteTurn(id, content, models.StatusCompleted, session.CompleteOptions{
		Citations:         cites,
		ExtraOutput:       processed,
		AssociationColumn: assocColumn,
	})
}

// runChat serves a turn over the chat-completions API, streaming or not.
func (d *Dispatcher) runChat(id string, streaming bool, onDelta api.ChatStreamHandler) {
	dep, err := d.config.Deployment()
	if err != nil {
		d.completeError(id, err)
		return
	}

	req := api.ChatRequest{
		Model:    dep.ModelType,
		Messages: d.sess.HistoryForRequest(id),
	}

	var result *api.ChatResult
	if streaming {
		result, err = d.client.ChatCompletionStream(req, onDelta)
	} else {
		result, err = d.client.ChatCompletion(req)
	}
	if err != nil {
		d.completeError(id, err)
		return
	}

	cites, err := extractChatCitations(result)
	if err != nil {
		d.completeError(id, apierrors.NewProcessingError("failed to process chat citations", err))
		return
	}

	_ = d.sess.CompleteTurn(id, result.Content, models.StatusCompleted, session.CompleteOptions{
		Citations:         cites,
		ExtraOutput:       result.Moderations,
		AssociationColumn: dep.AssociationIDColumnName(),
	})
}

// extractChatCitations prefers the dedicated citations field; absent
// that, it derives citations from the flat-indexed moderation fields.
func extractChatCitations(result *api.ChatResult) ([]models.Citation, error) {
	if len(result.Citations) > 0 {
		return citations.FromStructured(result.Citations), nil
	}
	if result.Moderations != nil {
		return citations.FromRow(result.Moderations)
	}
	return nil, nil
}

// completeError records a failure as the turn's terminal state. The
// conversation stays usable after any single turn's failure.
func (d *Dispatcher) completeError(id string, err error) {
	_ = d.sess.CompleteTurn(id, "", models.StatusError, session.CompleteOptions{
		Error: formatTurnError(err),
	})
}

// formatTurnError renders an error the way it is shown on a failed turn.
func formatTurnError(err error) string {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.TurnError()
	}
	var procErr *apierrors.ProcessingError
	if errors.As(err, &procErr) {
		return fmt.Sprintf("Error processing response from Chat API  %s", procErr.Error())
	}
	var valErr *apierrors.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	return fmt.Sprintf("An unexpected error occurred: %v", err)
}
