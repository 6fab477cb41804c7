package dispatch

import (
	"sync"

	"github.com/diogo/deploychat/internal/api"
	apierrors "github.com/diogo/deploychat/internal/errors"
	"github.com/diogo/deploychat/internal/models"
	"github.com/diogo/deploychat/internal/session"
)

// FeedbackSubmitter records thumbs up/down signals on turns and forwards
// them as custom-metric datapoints. The local update is optimistic; the
// outbound call is best effort by design, favoring UI responsiveness over
// delivery guarantees.
type FeedbackSubmitter struct {
	client api.ClientInterface
	config *session.Config
	sess   *session.Session

	mu     sync.Mutex
	metric *models.CustomMetricInfo
	looked bool
}

// NewFeedbackSubmitter creates a submitter bound to one session.
func NewFeedbackSubmitter(client api.ClientInterface, config *session.Config, sess *session.Session) *FeedbackSubmitter {
	return &FeedbackSubmitter{client: client, config: config, sess: sess}
}

// Submit records feedback for a turn. Re-submitting the stored value is a
// no-op and triggers no outbound call. Telemetry failures are swallowed;
// the local feedback state is already updated when the POST fires.
func (f *FeedbackSubmitter) Submit(id string, value int) error {
	if value != 0 && value != 1 {
		return apierrors.NewValidationError("feedback value must be 0 or 1, got %d", value)
	}

	changed, err := f.sess.RecordFeedback(id, value)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	metric := f.customMetric()
	if metric == nil {
		return nil
	}

	associationID := id
	if meta := f.sess.Meta(id); meta != nil && meta.AssociationID != "" {
		associationID = meta.AssociationID
	}

	dep, err := f.config.Deployment()
	if err != nil {
		return nil
	}

	// fire and forget
	_ = f.client.SubmitMetric(dep, metric, associationID, value)
	return nil
}

// customMetric resolves the feedback metric descriptor once.
func (f *FeedbackSubmitter) customMetric() *models.CustomMetricInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.looked {
		f.metric, _ = f.client.GetCustomMetric()
		f.looked = true
	}
	return f.metric
}
