package domain

import "time"

// AnonymousUser is the user ID recorded when a request carries none.
const AnonymousUser = "anonymous"

// AskRequest is a question to be answered with retrieved context.
type AskRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
}

// ContextSource identifies a retrieved chunk used as answer context.
type ContextSource struct {
	Title    string         `json:"title"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RetrievedContext is the context assembled from relevant search hits.
type RetrievedContext struct {
	// Context holds chunk contents separated by a blank line.
	Context    string          `json:"context"`
	Sources    []ContextSource `json:"sources"`
	ChunkCount int             `json:"chunk_count"`
	TotalHits  int             `json:"total_hits"`
}

// Answer is a generated response together with provenance.
type Answer struct {
	Answer              string          `json:"answer"`
	ContextSources      []ContextSource `json:"context_sources"`
	InteractionID       string          `json:"interaction_id"`
	ConversationID      string          `json:"conversation_id"`
	Timestamp           time.Time       `json:"timestamp"`
	ModelID             string          `json:"model_id"`
	SimilarityThreshold float64         `json:"similarity_threshold"`
	ChunkCount          int             `json:"chunk_count"`
}

// Interaction is the audit record of one question and its answer.
type Interaction struct {
	ID               string    `json:"interaction_id"`
	ConversationID   string    `json:"conversation_id"`
	UserID           string    `json:"user_id"`
	Query            string    `json:"query"`
	Response         string    `json:"response"`
	Timestamp        time.Time `json:"timestamp"`
	ModelID          string    `json:"model_id"`
	EmbeddingModelID string    `json:"embedding_model_id"`
}

// Health states.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus reports the reachability of external collaborators.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
	Error     string            `json:"error,omitempty"`
}
