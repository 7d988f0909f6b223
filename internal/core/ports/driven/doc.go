// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for ingestion to function:
//
//   - HelpCenter: Fetches articles from the help-center API
//   - Normaliser: Turns article HTML into plain text
//   - RecordWriter: Persists curated records as line-delimited JSON
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ArticleStore: Curated article persistence (SQLite).
//   - EmbeddingService: Generates vector embeddings. Without it, indexing and answering are disabled.
//   - VectorSearch: k-NN and keyword search. Without it, indexing, search and answering are disabled.
//   - LLMService: Language model operations. Without it, answering is disabled.
//   - ObjectStore: Interaction audit records. Without it, interactions are not stored.
//   - MetricsRecorder: Request metrics. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
