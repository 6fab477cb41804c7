package config

import (
	"os"
	"strings"

	apierrors "github.com/diogo/deploychat/internal/errors"
)

// Environment variable names injected by the platform runtime.
const (
	EnvToken            = "TOKEN"
	EnvEndpoint         = "ENDPOINT"
	EnvDeploymentID     = "DEPLOYMENT_ID"
	EnvCustomMetricID   = "CUSTOM_METRIC_ID"
	EnvAppID            = "APP_ID"
	EnvChatAPI          = "ENABLE_CHAT_API"
	EnvChatAPIStreaming = "ENABLE_CHAT_API_STREAMING"
	EnvSystemPrompt     = "SYSTEM_PROMPT"
	EnvPlatformEndpoint = "DATAROBOT_ENDPOINT"
)

// internalEndpoint is the in-cluster API URL. When the app runs behind
// it, predictions must go to the internal prediction server service
// instead of the external URL.
const (
	internalEndpoint         = "http://datarobot-nginx/api/v2/"
	internalPredictionServer = "http://datarobot-prediction-server:80/predApi/v1.0"
)

// Env is the platform-injected runtime configuration for one session.
type Env struct {
	Token          string
	Endpoint       string
	DeploymentID   string
	CustomMetricID string
	AppID          string
	SystemPrompt   string

	ChatAPIEnabled   bool
	StreamingEnabled bool
}

// FromEnv reads the runtime configuration from the environment.
func FromEnv() (*Env, error) {
	env := &Env{
		Token:            os.Getenv(EnvToken),
		Endpoint:         strings.TrimSuffix(os.Getenv(EnvEndpoint), "/"),
		DeploymentID:     os.Getenv(EnvDeploymentID),
		CustomMetricID:   os.Getenv(EnvCustomMetricID),
		AppID:            os.Getenv(EnvAppID),
		SystemPrompt:     os.Getenv(EnvSystemPrompt),
		ChatAPIEnabled:   boolEnv(EnvChatAPI),
		StreamingEnabled: boolEnv(EnvChatAPIStreaming),
	}

	if env.DeploymentID == "" {
		return nil, apierrors.NewValidationError(
			"required environment variable %s is not defined; set the variable and rebuild the application", EnvDeploymentID)
	}
	if env.Token == "" {
		return nil, apierrors.NewValidationError("required environment variable %s is not defined", EnvToken)
	}
	if env.Endpoint == "" {
		return nil, apierrors.NewValidationError("required environment variable %s is not defined", EnvEndpoint)
	}

	return env, nil
}

// PredictionOverrideURL returns the prediction server base URL override
// for on-prem and single-tenant networks, "" when the external URL works.
func PredictionOverrideURL() string {
	if os.Getenv(EnvPlatformEndpoint) == internalEndpoint {
		return internalPredictionServer
	}
	return ""
}

func boolEnv(name string) bool {
	return strings.EqualFold(os.Getenv(name), "true")
}
