package config

import "time"

// Config is the root application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Checker  CheckerConfig  `yaml:"checker"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
}

// StoreConfig holds record/report store settings.
type StoreConfig struct {
	Path string `yaml:"path" env:"STORE_PATH" env-default:"./lexicheck.db"`
}

// CheckerConfig holds verification settings: the translation endpoint, the
// lexical database and the similarity threshold below which a translation
// is flagged for review.
type CheckerConfig struct {
	FuzzyRatioThreshold int           `yaml:"fuzzy_ratio_threshold" env:"CHECKER_FUZZY_RATIO_THRESHOLD" env-default:"85"`
	TranslatorBaseURL   string        `yaml:"translator_base_url"   env:"CHECKER_TRANSLATOR_BASE_URL"   env-default:"http://localhost:5000"`
	TranslatorAPIKey    string        `yaml:"translator_api_key"    env:"CHECKER_TRANSLATOR_API_KEY"`
	TranslatorTimeout   time.Duration `yaml:"translator_timeout"    env:"CHECKER_TRANSLATOR_TIMEOUT"    env-default:"10s"`
	LexiconPath         string        `yaml:"lexicon_path"          env:"CHECKER_LEXICON_PATH"`
}

// PipelineConfig holds batch-run settings.
type PipelineConfig struct {
	// ProgressEvery is the record interval between progress log lines
	// during a verification run.
	ProgressEvery int `yaml:"progress_every" env:"PIPELINE_PROGRESS_EVERY" env-default:"25"`
	// Limit caps the number of records verified in one run; 0 means all.
	Limit int `yaml:"limit" env:"PIPELINE_LIMIT" env-default:"0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
