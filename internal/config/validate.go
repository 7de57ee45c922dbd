package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if c.Checker.FuzzyRatioThreshold < 0 || c.Checker.FuzzyRatioThreshold > 100 {
		return fmt.Errorf("checker.fuzzy_ratio_threshold must be within 0-100 (got %d)", c.Checker.FuzzyRatioThreshold)
	}
	if c.Checker.TranslatorBaseURL == "" {
		return fmt.Errorf("checker.translator_base_url must not be empty")
	}
	if c.Checker.TranslatorTimeout <= 0 {
		return fmt.Errorf("checker.translator_timeout must be > 0 (got %v)", c.Checker.TranslatorTimeout)
	}
	if c.Pipeline.ProgressEvery <= 0 {
		return fmt.Errorf("pipeline.progress_every must be > 0 (got %d)", c.Pipeline.ProgressEvery)
	}
	if c.Pipeline.Limit < 0 {
		return fmt.Errorf("pipeline.limit must be >= 0 (got %d)", c.Pipeline.Limit)
	}
	return nil
}
