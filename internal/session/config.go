package session

import (
	"github.com/diogo/deploychat/internal/models"
)

// Cache keys for resolved session capabilities.
const (
	cacheKeyDeployment    = "deployment"
	cacheKeyChatSupported = "chat_supported"
)

// DeploymentProvider fetches the deployment descriptor. Implemented by
// api.Client; faked in tests.
type DeploymentProvider interface {
	GetDeployment() (*models.Deployment, error)
}

// CapabilityChecker answers whether the deployment exposes the
// chat-completions API.
type CapabilityChecker interface {
	HasChatSupport() (bool, error)
}

// Config resolves and caches the capability flags and column conventions
// the dispatcher needs. Resolution happens at most once per session;
// recomputation requires explicit cache invalidation.
type Config struct {
	// ChatAPIEnabled administratively enables the chat API. Without it
	// the capability query is not even consulted.
	ChatAPIEnabled bool
	// StreamingEnabled selects the streaming chat protocol when the chat
	// API is in use.
	StreamingEnabled bool

	deployments  DeploymentProvider
	capabilities CapabilityChecker
	cache        *Cache
}

// NewConfig creates a session config backed by the given providers.
func NewConfig(deployments DeploymentProvider, capabilities CapabilityChecker, chatEnabled, streamingEnabled bool) *Config {
	return &Config{
		ChatAPIEnabled:   chatEnabled,
		StreamingEnabled: streamingEnabled,
		deployments:      deployments,
		capabilities:     capabilities,
		cache:            NewCache(),
	}
}

// Deployment returns the session's deployment descriptor, fetching it on
// first use.
func (c *Config) Deployment() (*models.Deployment, error) {
	if v, ok := c.cache.Get(cacheKeyDeployment); ok {
		return v.(*models.Deployment), nil
	}
	dep, err := c.deployments.GetDeployment()
	if err != nil {
		return nil, err
	}
	c.cache.Set(cacheKeyDeployment, dep)
	return dep, nil
}

// ChatAPISupported reports whether the deployment supports the chat API.
// The capability query runs once; a query failure resolves to false and
// is cached like any other answer, so a flaky capability endpoint cannot
// flip protocols mid-session.
func (c *Config) ChatAPISupported() bool {
	if v, ok := c.cache.Get(cacheKeyChatSupported); ok {
		return v.(bool)
	}
	supported, err := c.capabilities.HasChatSupport()
	if err != nil {
		supported = false
	}
	c.cache.Set(cacheKeyChatSupported, supported)
	return supported
}

// AssociationIDColumnName returns the deployment's association-id column,
// or "" when none is configured. Absence means no request/response
// correlation is available and feedback submission stays disabled.
func (c *Config) AssociationIDColumnName() string {
	dep, err := c.Deployment()
	if err != nil {
		return ""
	}
	return dep.AssociationIDColumnName()
}

// FeedbackAvailable reports whether feedback can be correlated back to a
// turn.
func (c *Config) FeedbackAvailable() bool {
	return c.AssociationIDColumnName() != ""
}

// Invalidate drops all resolved values, forcing re-resolution on next use.
func (c *Config) Invalidate() {
	c.cache.InvalidateAll()
}
