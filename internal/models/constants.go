// Package models contains data types and constants shared across deploychat.
package models

import "time"

// API path templates, relative to the configured platform endpoint
const (
	PathPredictions     = "/predApi/v1.0/deployments/%s/predictions"
	PathChatCompletions = "/deployments/%s/chat/completions"
	PathCapabilities    = "/deployments/%s/capabilities/"
	PathDeployment      = "/deployments/%s/"
	PathCustomMetric    = "/deployments/%s/customMetrics/%s/fromJSON/"
	PathApplication     = "/customApplications/%s/"
)

// Don't change this. It is enforced server-side too.
const MaxPredictionInputSizeBytes = 52428800 // 50 MB

// Default column names used when the deployment does not define its own
const (
	DefaultPromptColumnName = "promptText"
	DefaultResultColumnName = "resultText"
)

// ChatCapabilityKey is the capability name reported by deployments that
// expose the chat-completions API.
const ChatCapabilityKey = "supports_chat_api"

// Timeouts
const (
	PredictionsTimeout  = 60 * time.Second
	CapabilitiesTimeout = 20 * time.Second
	MetricSubmitTimeout = 60 * time.Second
	ApplicationTimeout  = 30 * time.Second
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn status values
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusError     = "ERROR"
)

// Result column suffixes imposed by the prediction server. They are
// stripped from returned field names before any lookup.
var ResultColumnSuffixes = []string{"_PREDICTION", "_OUTPUT"}

// Extra model output keys carried alongside the primary response
const (
	ExtraKeyLatency    = "datarobot_latency"
	ExtraKeyTokenCount = "datarobot_token_count"
	ExtraKeyConfidence = "datarobot_confidence_score"
)

// LLMContextKey marks the JSON-encoded citation context fallback field.
const LLMContextKey = "_LLM_CONTEXT"

// CitationKeyPrefix prefixes the flat-indexed citation columns
// (CITATION_CONTENT_0, CITATION_SOURCE_0, CITATION_PAGE_0, ...).
const (
	CitationContentPrefix = "CITATION_CONTENT_"
	CitationSourcePrefix  = "CITATION_SOURCE_"
	CitationPagePrefix    = "CITATION_PAGE_"
)
