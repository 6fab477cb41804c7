package api

import (
	http "github.com/bogdanfinn/fhttp"

	"github.com/diogo/deploychat/internal/models"
)

// MockClient is a mock implementation of ClientInterface for testing
type MockClient struct {
	// Mock return values
	DeploymentVal   *models.Deployment
	DeploymentErr   error
	ChatSupportVal  bool
	ChatSupportErr  error
	AppInfoVal      map[string]any
	AppInfoErr      error
	PredictVal      map[string]any
	PredictHeaders  http.Header
	PredictErr      error
	ChatVal         *ChatResult
	ChatErr         error
	StreamVal       *ChatResult
	StreamErr       error
	StreamDeltas    []string // deltas delivered before StreamVal returns
	CustomMetricVal *models.CustomMetricInfo
	CustomMetricErr error
	SubmitMetricErr error
	DeploymentIDVal string
	MetricIDVal     string
	IsClosedVal     bool

	// Call counters/recorders
	GetDeploymentCalled int
	ChatSupportCalled   int
	PredictCalled       int
	ChatCalled          int
	StreamCalled        int
	SubmitMetricCalled  int
	LastPredictRow      map[string]any
	LastChatRequest     ChatRequest
	LastMetricValue     int
	LastAssociationID   string
}

// Ensure MockClient implements ClientInterface
var _ ClientInterface = (*MockClient)(nil)

func (m *MockClient) Close()                 {}
func (m *MockClient) IsClosed() bool         { return m.IsClosedVal }
func (m *MockClient) DeploymentID() string   { return m.DeploymentIDVal }
func (m *MockClient) CustomMetricID() string { return m.MetricIDVal }

func (m *MockClient) GetDeployment() (*models.Deployment, error) {
	m.GetDeploymentCalled++
	return m.DeploymentVal, m.DeploymentErr
}

func (m *MockClient) HasChatSupport() (bool, error) {
	m.ChatSupportCalled++
	return m.ChatSupportVal, m.ChatSupportErr
}

func (m *MockClient) GetApplicationInfo() (map[string]any, error) {
	return m.AppInfoVal, m.AppInfoErr
}

func (m *MockClient) Predict(row map[string]any) (map[string]any, http.Header, error) {
	m.PredictCalled++
	m.LastPredictRow = row
	return m.PredictVal, m.PredictHeaders, m.PredictErr
}

func (m *MockClient) ChatCompletion(req ChatRequest) (*ChatResult, error) {
	m.ChatCalled++
	m.LastChatRequest = req
	return m.ChatVal, m.ChatErr
}

func (m *MockClient) ChatCompletionStream(req ChatRequest, onDelta ChatStreamHandler) (*ChatResult, error) {
	m.StreamCalled++
	m.LastChatRequest = req
	if m.StreamErr != nil {
		return nil, m.StreamErr
	}
	for _, delta := range m.StreamDeltas {
		if onDelta != nil {
			onDelta(delta)
		}
	}
	return m.StreamVal, nil
}

func (m *MockClient) GetCustomMetric() (*models.CustomMetricInfo, error) {
	return m.CustomMetricVal, m.CustomMetricErr
}

func (m *MockClient) SubmitMetric(dep *models.Deployment, metric *models.CustomMetricInfo, associationID string, value int) error {
	m.SubmitMetricCalled++
	m.LastAssociationID = associationID
	m.LastMetricValue = value
	return m.SubmitMetricErr
}
