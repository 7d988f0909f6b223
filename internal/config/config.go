// Package config holds the typed runtime settings of kbrag.
//
// Settings come from ~/.kbrag/config.toml (the same file `kbrag config set`
// edits) and environment variables. Priority: ENV > file > env-default tags.
package config

import "time"

// Settings is the root configuration.
type Settings struct {
	HelpCenter    HelpCenterConfig    `toml:"helpcenter"`
	Embedding     EmbeddingConfig     `toml:"embedding"`
	LLM           LLMConfig           `toml:"llm"`
	Vector        VectorConfig        `toml:"vector"`
	KnowledgeBase KnowledgeBaseConfig `toml:"kb"`
	Storage       StorageConfig       `toml:"storage"`
	Redis         RedisConfig         `toml:"redis"`
	Server        ServerConfig        `toml:"server"`
	Log           LogConfig           `toml:"log"`
}

// HelpCenterConfig holds help-center API settings.
type HelpCenterConfig struct {
	BaseURL           string        `toml:"base_url"            env:"HELPCENTER_URL"`
	Email             string        `toml:"email"               env:"HELPCENTER_EMAIL"`
	APIToken          string        `toml:"api_token"           env:"HELPCENTER_API_TOKEN"`
	OAuthToken        string        `toml:"oauth_token"         env:"HELPCENTER_OAUTH_TOKEN"`
	Locale            string        `toml:"locale"              env:"HELPCENTER_LOCALE"              env-default:"en-us"`
	PerPage           int           `toml:"per_page"            env:"HELPCENTER_PER_PAGE"            env-default:"100"`
	RequestsPerSecond float64       `toml:"requests_per_second" env:"HELPCENTER_REQUESTS_PER_SECOND" env-default:"5"`
	Timeout           time.Duration `toml:"timeout"             env:"HELPCENTER_TIMEOUT"             env-default:"30s"`
}

// EmbeddingConfig selects and configures the embedding service.
type EmbeddingConfig struct {
	Provider   string        `toml:"provider"   env:"EMBEDDING_PROVIDER"   env-default:"openai"`
	BaseURL    string        `toml:"base_url"   env:"EMBEDDING_BASE_URL"`
	APIKey     string        `toml:"api_key"    env:"EMBEDDING_API_KEY"`
	Model      string        `toml:"model"      env:"EMBEDDING_MODEL_ID"`
	Dimensions int           `toml:"dimensions" env:"OPENSEARCH_VECTOR_DIMENSION" env-default:"1536"`
	BatchSize  int           `toml:"batch_size" env:"EMBEDDING_BATCH_SIZE" env-default:"64"`
	Timeout    time.Duration `toml:"timeout"    env:"EMBEDDING_TIMEOUT"    env-default:"60s"`
}

// LLMConfig selects and configures the answer model.
type LLMConfig struct {
	Provider    string        `toml:"provider"    env:"LLM_PROVIDER"    env-default:"anthropic"`
	BaseURL     string        `toml:"base_url"    env:"LLM_BASE_URL"`
	APIKey      string        `toml:"api_key"     env:"LLM_API_KEY"`
	Model       string        `toml:"model"       env:"LLM_MODEL_ID"`
	MaxTokens   int           `toml:"max_tokens"  env:"LLM_MAX_TOKENS"  env-default:"4000"`
	Temperature float64       `toml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.1"`
	Timeout     time.Duration `toml:"timeout"     env:"LLM_TIMEOUT"     env-default:"120s"`
}

// VectorConfig holds vector-search cluster settings.
type VectorConfig struct {
	URL                 string        `toml:"url"                  env:"OPENSEARCH_ENDPOINT"`
	Index               string        `toml:"index"                env:"OPENSEARCH_INDEX_NAME"       env-default:"knowledge-base"`
	VectorField         string        `toml:"vector_field"         env:"OPENSEARCH_VECTOR_FIELD"     env-default:"vector_field"`
	Username            string        `toml:"username"             env:"OPENSEARCH_USERNAME"`
	Password            string        `toml:"password"             env:"OPENSEARCH_PASSWORD"`
	APIKey              string        `toml:"api_key"              env:"OPENSEARCH_API_KEY"`
	SigV4               bool          `toml:"sigv4"                env:"OPENSEARCH_SIGV4"`
	AWSRegion           string        `toml:"aws_region"           env:"OPENSEARCH_AWS_REGION,AWS_REGION"`
	AWSService          string        `toml:"aws_service"          env:"OPENSEARCH_AWS_SERVICE"      env-default:"aoss"`
	SimilarityThreshold float64       `toml:"similarity_threshold" env:"VECTOR_SIMILARITY_THRESHOLD" env-default:"0.8"`
	MaxResults          int           `toml:"max_results"          env:"VECTOR_MAX_RESULTS"          env-default:"10"`
	Timeout             time.Duration `toml:"timeout"              env:"VECTOR_SEARCH_TIMEOUT"       env-default:"30s"`
}

// KnowledgeBaseConfig holds chunking and relevance settings.
type KnowledgeBaseConfig struct {
	ChunkSize         int     `toml:"chunk_size"          env:"KB_CHUNK_SIZE"          env-default:"1000"`
	ChunkOverlap      int     `toml:"chunk_overlap"       env:"KB_CHUNK_OVERLAP"       env-default:"200"`
	MinRelevanceScore float64 `toml:"min_relevance_score" env:"KB_MIN_RELEVANCE_SCORE" env-default:"0.7"`
}

// StorageConfig holds local persistence locations. Empty values use
// the defaults under ~/.kbrag.
type StorageConfig struct {
	DataDir         string `toml:"data_dir"         env:"KBRAG_DATA_DIR"`
	PromptDir       string `toml:"prompt_dir"       env:"KBRAG_PROMPT_DIR"`
	InteractionsDir string `toml:"interactions_dir" env:"INTERACTIONS_DIR"`

	// S3Bucket switches interaction records from InteractionsDir to S3.
	S3Bucket   string `toml:"s3_bucket"   env:"S3_BUCKET_NAME"`
	S3Region   string `toml:"s3_region"   env:"S3_REGION,AWS_REGION"`
	S3Endpoint string `toml:"s3_endpoint" env:"S3_ENDPOINT"`
}

// RedisConfig configures the embedding cache. An empty address disables it.
type RedisConfig struct {
	Addr     string        `toml:"addr"     env:"REDIS_ADDR"`
	Password string        `toml:"password" env:"REDIS_PASSWORD"`
	DB       int           `toml:"db"       env:"REDIS_DB"       env-default:"0"`
	TTL      time.Duration `toml:"ttl"      env:"REDIS_TTL"      env-default:"168h"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `toml:"addr"             env:"SERVER_ADDR"             env-default:":8080"`
	AllowedOrigins  string        `toml:"allowed_origins"  env:"CORS_ALLOWED_ORIGINS"    env-default:"*"`
	ReadTimeout     time.Duration `toml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `toml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"180s"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	EnableMetrics   bool          `toml:"enable_metrics"   env:"ENABLE_PERFORMANCE_METRICS" env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"LOG_LEVEL" env-default:"INFO"`
}
