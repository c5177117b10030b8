package config

import "time"

// Config is the root application configuration.
type Config struct {
	Sheets    SheetsConfig    `yaml:"sheets"`
	LLM       LLMConfig       `yaml:"llm"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Worksheet WorksheetConfig `yaml:"worksheet"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
}

// SheetsConfig holds the spreadsheet backend settings and sheet names.
type SheetsConfig struct {
	SpreadsheetID   string        `yaml:"spreadsheet_id" env:"SHEETS_SPREADSHEET_ID"`
	CredentialsFile string        `yaml:"credentials_file" env:"SHEETS_CREDENTIALS_FILE"`
	CredentialsJSON string        `yaml:"credentials_json" env:"SHEETS_CREDENTIALS_JSON"`
	Endpoint        string        `yaml:"endpoint" env:"SHEETS_ENDPOINT"`
	Timeout         time.Duration `yaml:"timeout" env:"SHEETS_TIMEOUT" env-default:"30s"`

	IntakeSheet       string `yaml:"intake_sheet" env:"SHEETS_INTAKE" env-default:"家長申請"`
	ReviewSheet       string `yaml:"review_sheet" env:"SHEETS_REVIEW" env-default:"Review"`
	ReferenceSheet    string `yaml:"reference_sheet" env:"SHEETS_REFERENCE" env-default:"P2_TM"`
	StandbySheet      string `yaml:"standby_sheet" env:"SHEETS_STANDBY" env-default:"Standby"`
	WorksheetLogSheet string `yaml:"worksheet_log_sheet" env:"SHEETS_WORKSHEET_LOG" env-default:"P2_WS"`
}

// LLMConfig holds the completion service settings.
type LLMConfig struct {
	Provider             string        `yaml:"provider" env:"LLM_PROVIDER" env-default:"deepseek"`
	APIKey               string        `yaml:"api_key" env:"LLM_API_KEY"`
	BaseURL              string        `yaml:"base_url" env:"LLM_BASE_URL"`
	Model                string        `yaml:"model" env:"LLM_MODEL"`
	Persona              string        `yaml:"persona" env:"LLM_PERSONA" env-default:"你是一位資深的香港小學中文科老師。請使用繁體中文。"`
	Temperature          float64       `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.7"`
	MaxTokens            int           `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`
	Timeout              time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"30s"`
	MaxRetries           int           `yaml:"max_retries" env:"LLM_MAX_RETRIES" env-default:"2"`
	RetryInitialInterval time.Duration `yaml:"retry_initial_interval" env:"LLM_RETRY_INITIAL_INTERVAL" env-default:"1s"`
	RetryMaxInterval     time.Duration `yaml:"retry_max_interval" env:"LLM_RETRY_MAX_INTERVAL" env-default:"10s"`
}

// PipelineConfig holds the stage behaviour settings.
type PipelineConfig struct {
	Audience          string `yaml:"audience" env:"PIPELINE_AUDIENCE" env-default:"香港小學生"`
	MissingWordPolicy string `yaml:"missing_word_policy" env:"PIPELINE_MISSING_WORD_POLICY" env-default:"retry"`
	SentenceAttempts  int    `yaml:"sentence_attempts" env:"PIPELINE_SENTENCE_ATTEMPTS" env-default:"2"`
	Removal           string `yaml:"removal" env:"PIPELINE_REMOVAL" env-default:"delete"`
	SaveToBank        bool   `yaml:"save_to_bank" env:"PIPELINE_SAVE_TO_BANK" env-default:"false"`
	DateFormat        string `yaml:"date_format" env:"PIPELINE_DATE_FORMAT" env-default:"2006/01/02"`
	Timezone          string `yaml:"timezone" env:"PIPELINE_TIMEZONE" env-default:"Asia/Hong_Kong"`

	// Location is parsed from Timezone during validation.
	Location *time.Location `yaml:"-" env:"-"`
}

// WorksheetConfig holds PDF worksheet settings.
type WorksheetConfig struct {
	Title          string  `yaml:"title" env:"WORKSHEET_TITLE" env-default:"螺旋式學習工作紙"`
	FontPath       string  `yaml:"font_path" env:"WORKSHEET_FONT_PATH"`
	FontFamily     string  `yaml:"font_family" env:"WORKSHEET_FONT_FAMILY" env-default:"KaiTi"`
	FontSize       float64 `yaml:"font_size" env:"WORKSHEET_FONT_SIZE" env-default:"12"`
	IncludeAnswers bool    `yaml:"include_answers" env:"WORKSHEET_INCLUDE_ANSWERS" env-default:"false"`
	Concurrency    int     `yaml:"concurrency" env:"WORKSHEET_CONCURRENCY" env-default:"4"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"10m"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`

	// RateLimitPerMinute caps stage runs and worksheet renders per operator.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" env:"SERVER_RATE_LIMIT_PER_MINUTE" env-default:"30"`
}

// AuthConfig holds operator token settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	JWTIssuer      string        `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"spiral-worksheets"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"720h"`
}

// DatabaseConfig holds PostgreSQL connection settings for the run log.
// An empty DSN disables the run log.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns" env:"DATABASE_MAX_CONNS" env-default:"5"`
	MinConns        int32         `yaml:"min_conns" env:"DATABASE_MIN_CONNS" env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DATABASE_MAX_CONN_LIFETIME" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	RunRetention    time.Duration `yaml:"run_retention" env:"DATABASE_RUN_RETENTION" env-default:"2160h"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool { return c.DSN != "" }

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age" env:"CORS_MAX_AGE" env-default:"86400"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
