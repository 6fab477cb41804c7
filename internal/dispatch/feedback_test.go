package dispatch

import (
	"errors"
	"testing"

	"github.com/diogo/deploychat/internal/api"
	apierrors "github.com/diogo/deploychat/internal/errors"
	"github.com/diogo/deploychat/internal/models"
	"github.com/diogo/deploychat/internal/session"
)

func newTestSubmitter(client *api.MockClient) (*FeedbackSubmitter, *session.Session) {
	sess := session.New("")
	cfg := session.NewConfig(client, client, false, false)
	return NewFeedbackSubmitter(client, cfg, sess), sess
}

func completedTurn(t *testing.T, sess *session.Session) string {
	t.Helper()
	id, err := sess.AppendUserPrompt("question")
	if err != nil {
		t.Fatalf("AppendUserPrompt() error = %v", err)
	}
	if err := sess.CompleteTurn(id, "answer", models.StatusCompleted, session.CompleteOptions{}); err != nil {
		t.Fatalf("CompleteTurn() error = %v", err)
	}
	return id
}

func TestSubmitFeedback(t *testing.T) {
	client := &api.MockClient{
		DeploymentVal:   &models.Deployment{ID: "dep-1"},
		CustomMetricVal: &models.CustomMetricInfo{ID: "metric-1"},
	}
	f, sess := newTestSubmitter(client)
	id := completedTurn(t, sess)

	if err := f.Submit(id, 1); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if client.SubmitMetricCalled != 1 {
		t.Fatalf("SubmitMetric called %d times, want 1", client.SubmitMetricCalled)
	}
	if client.LastMetricValue != 1 {
		t.Errorf("metric value = %d, want 1", client.LastMetricValue)
	}
	if client.LastAssociationID != id {
		t.Errorf("association id = %q, want turn id", client.LastAssociationID)
	}
}

func TestSubmitFeedbackDuplicateIsNoOp(t *testing.T) {
	client := &api.MockClient{
		DeploymentVal:   &models.Deployment{ID: "dep-1"},
		CustomMetricVal: &models.CustomMetricInfo{ID: "metric-1"},
	}
	f, sess := newTestSubmitter(client)
	id := completedTurn(t, sess)

	// N submissions of the same value yield at most one outbound call
	for i := 0; i < 5; i++ {
		if err := f.Submit(id, 1); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	if client.SubmitMetricCalled != 1 {
		t.Errorf("SubmitMetric called %d times, want 1", client.SubmitMetricCalled)
	}

	// Flipping the value fires again
	if err := f.Submit(id, 0); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if client.SubmitMetricCalled != 2 {
		t.Errorf("SubmitMetric called %d times after flip, want 2", client.SubmitMetricCalled)
	}
}

func TestSubmitFeedbackInvalidValue(t *testing.T) {
	client := &api.MockClient{}
	f, sess := newTestSubmitter(client)
	id := completedTurn(t, sess)

	err := f.Submit(id, 2)
	if err == nil {
		t.Fatal("Expected error for out-of-range feedback value")
	}
	if !apierrors.IsValidationError(err) {
		t.Errorf("error = %v, want ValidationError", err)
	}
	if client.SubmitMetricCalled != 0 {
		t.Error("invalid value must not reach the backend")
	}
}

func TestSubmitFeedbackUnknownTurn(t *testing.T) {
	f, _ := newTestSubmitter(&api.MockClient{})
	if err := f.Submit("no-such-turn", 1); !errors.Is(err, apierrors.ErrUnknownTurn) {
		t.Errorf("Submit() error = %v, want ErrUnknownTurn", err)
	}
}

func TestSubmitFeedbackNoMetricConfigured(t *testing.T) {
	client := &api.MockClient{DeploymentVal: &models.Deployment{ID: "dep-1"}}
	f, sess := newTestSubmitter(client)
	id := completedTurn(t, sess)

	// Local feedback still records; no telemetry without a metric
	if err := f.Submit(id, 1); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if client.SubmitMetricCalled != 0 {
		t.Error("SubmitMetric called without a configured metric")
	}
	meta := sess.Meta(id)
	if meta.FeedbackValue == nil || *meta.FeedbackValue != 1 {
		t.Errorf("feedback value = %v, want 1", meta.FeedbackValue)
	}
}

func TestSubmitFeedbackTelemetryFailureSwallowed(t *testing.T) {
	client := &api.MockClient{
		DeploymentVal:   &models.Deployment{ID: "dep-1"},
		CustomMetricVal: &models.CustomMetricInfo{ID: "metric-1"},
		SubmitMetricErr: errors.New("metrics endpoint down"),
	}
	f, sess := newTestSubmitter(client)
	id := completedTurn(t, sess)

	if err := f.Submit(id, 0); err != nil {
		t.Errorf("Submit() error = %v, telemetry failures must be swallowed", err)
	}
	meta := sess.Meta(id)
	if meta.FeedbackValue == nil || *meta.FeedbackValue != 0 {
		t.Errorf("local feedback must stick despite telemetry failure, got %v", meta.FeedbackValue)
	}
}

func TestSubmitFeedbackUsesServerAssociationID(t *testing.T) {
	client := &api.MockClient{
		DeploymentVal:   &models.Deployment{ID: "dep-1", AssociationColumns: []string{"association_id"}},
		CustomMetricVal: &models.CustomMetricInfo{ID: "metric-1"},
	}
	f, sess := newTestSubmitter(client)

	id, _ := sess.AppendUserPrompt("question")
	_ = sess.CompleteTurn(id, "answer", models.StatusCompleted, session.CompleteOptions{
		ExtraOutput:       map[string]any{"association_id": "server-echoed-id"},
		AssociationColumn: "association_id",
	})

	if err := f.Submit(id, 1); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if client.LastAssociationID != "server-echoed-id" {
		t.Errorf("association id = %q, want server-echoed value", client.LastAssociationID)
	}
}
