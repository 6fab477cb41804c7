package api

import (
	http "github.com/bogdanfinn/fhttp"

	"github.com/diogo/deploychat/internal/models"
)

// ClientInterface defines the platform operations the rest of the app
// consumes, so the dispatcher, commands and TUI can run against mocks.
type ClientInterface interface {
	Close()
	IsClosed() bool
	DeploymentID() string
	CustomMetricID() string

	GetDeployment() (*models.Deployment, error)
	HasChatSupport() (bool, error)
	GetApplicationInfo() (map[string]any, error)

	Predict(row map[string]any) (map[string]any, http.Header, error)
	ChatCompletion(req ChatRequest) (*ChatResult, error)
	ChatCompletionStream(req ChatRequest, onDelta ChatStreamHandler) (*ChatResult, error)

	GetCustomMetric() (*models.CustomMetricInfo, error)
	SubmitMetric(dep *models.Deployment, metric *models.CustomMetricInfo, associationID string, value int) error
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)
