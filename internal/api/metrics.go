package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	"github.com/diogo/deploychat/internal/models"
)

// GetCustomMetric fetches the feedback metric descriptor configured for
// this app, nil when no metric id is set.
func (c *Client) GetCustomMetric() (*models.CustomMetricInfo, error) {
	if c.customMetricID == "" {
		return nil, nil
	}

	// Descriptor lives at the metric resource itself, not the ingest path
	url := c.endpoint + fmt.Sprintf("/deployments/%s/customMetrics/%s/", c.deploymentID, c.customMetricID)

	body, _, err := c.doRequest(http.MethodGet, url, nil, c.authHeaders(), "get custom metric", models.MetricSubmitTimeout)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	return &models.CustomMetricInfo{
		ID:              c.customMetricID,
		IsModelSpecific: parsed.Get("isModelSpecific").Bool(),
	}, nil
}

// metricBucket is one feedback datapoint in the ingest payload.
type metricBucket struct {
	Timestamp     string `json:"timestamp"`
	Value         int    `json:"value"`
	AssociationID string `json:"associationId"`
}

type metricPayload struct {
	Buckets []metricBucket `json:"buckets"`
	ModelID string         `json:"modelId,omitempty"`
}

// SubmitMetric posts one feedback value tied to an association id. When
// the metric is model-specific the payload also names the deployment's
// active model.
func (c *Client) SubmitMetric(dep *models.Deployment, metric *models.CustomMetricInfo, associationID string, value int) error {
	if metric == nil {
		return nil
	}

	payload := metricPayload{
		Buckets: []metricBucket{{
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			Value:         value,
			AssociationID: associationID,
		}},
	}
	if metric.IsModelSpecific && dep != nil {
		payload.ModelID = dep.ModelID
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal metric payload: %w", err)
	}

	url := c.apiURL(models.PathCustomMetric, c.deploymentID, metric.ID)
	_, _, err = c.doRequest(http.MethodPost, url, bytes.NewReader(data), c.authHeaders(), "submit metric", models.MetricSubmitTimeout)
	return err
}
