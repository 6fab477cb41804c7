package models

// Deployment describes the remote LLM deployment the app talks to. It is
// resolved once per session from the platform API.
type Deployment struct {
	ID         string
	Label      string
	ModelID    string
	ModelType  string
	PromptName string // prompt column, "" means DefaultPromptColumnName
	TargetName string // result column, "" means DefaultResultColumnName

	// AssociationColumns holds the association-id column names configured
	// on the deployment. Empty means no request/response correlation is
	// available and feedback submission stays disabled.
	AssociationColumns []string
}

// PromptColumnName returns the configured prompt column or the default.
func (d *Deployment) PromptColumnName() string {
	if d.PromptName == "" {
		return DefaultPromptColumnName
	}
	return d.PromptName
}

// ResultColumnName returns the configured result column or the default.
func (d *Deployment) ResultColumnName() string {
	if d.TargetName == "" {
		return DefaultResultColumnName
	}
	return d.TargetName
}

// AssociationIDColumnName returns the first configured association-id
// column, or "" when the deployment defines none.
func (d *Deployment) AssociationIDColumnName() string {
	if len(d.AssociationColumns) == 0 {
		return ""
	}
	return d.AssociationColumns[0]
}

// CustomMetricInfo describes the feedback metric attached to the deployment.
type CustomMetricInfo struct {
	ID              string
	IsModelSpecific bool
}

// ChatChunk is one unit of a chat-completions response stream. For the
// non-streaming call a single chunk carries the full message content.
type ChatChunk struct {
	DeltaContent string
	Content      string // full message content, non-streaming only
	FinishReason string
	// Moderations carries the out-of-band metadata object from the
	// terminal chunk, still in its upstream wire form.
	Moderations map[string]any
}

// ChatMessage is the sanitized wire form of a conversation message. Only
// role and content ever leave the process.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
