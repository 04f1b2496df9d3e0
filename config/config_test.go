package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("PAPERFORGE_KAGGLE_USERNAME")
		os.Unsetenv("PAPERFORGE_KAGGLE_KEY")
		os.Unsetenv("PAPERFORGE_KAGGLE_BASE_URL")
		os.Unsetenv("PAPERFORGE_LLM_API_KEY")
		os.Unsetenv("PAPERFORGE_LLM_MODEL")
		os.Unsetenv("PAPERFORGE_CACHE_TTL")
		os.Unsetenv("PAPERFORGE_RESOLVER_MAX_CHECKS_PER_NAME")
		os.Unsetenv("PAPERFORGE_RESOLVER_SCORE_BAND_WIDTH")
		os.Unsetenv("PAPERFORGE_SAMPLING_PER_CLASS")
		os.Unsetenv("PAPERFORGE_SAMPLING_MAX_TOTAL")
		os.Unsetenv("PAPERFORGE_RATELIMIT_KAGGLE")
		os.Unsetenv("KAGGLE_USERNAME")
		os.Unsetenv("KAGGLE_KEY")
	}

	// Keep ~/.kaggle/kaggle.json on the dev machine out of the tests
	isolateHome := func(t *testing.T) {
		t.Helper()
		t.Setenv("HOME", t.TempDir())
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		isolateHome(t)
		// Set required credentials
		os.Setenv("PAPERFORGE_KAGGLE_USERNAME", "test-user")
		os.Setenv("PAPERFORGE_KAGGLE_KEY", "test-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Kaggle.BaseURL != "https://www.kaggle.com/api/v1" {
			t.Errorf("Kaggle.BaseURL = %s, want https://www.kaggle.com/api/v1", cfg.Kaggle.BaseURL)
		}
		if cfg.LLM.Model != "gpt-4o-mini" {
			t.Errorf("LLM.Model = %s, want gpt-4o-mini", cfg.LLM.Model)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Resolver.MaxChecksPerName != 8 {
			t.Errorf("Resolver.MaxChecksPerName = %d, want 8", cfg.Resolver.MaxChecksPerName)
		}
		if cfg.Resolver.ScoreBandWidth != 5 {
			t.Errorf("Resolver.ScoreBandWidth = %g, want 5", cfg.Resolver.ScoreBandWidth)
		}
		if cfg.Sampling.PerClass != 200 {
			t.Errorf("Sampling.PerClass = %d, want 200", cfg.Sampling.PerClass)
		}
		if cfg.Sampling.MaxTotal != 2000 {
			t.Errorf("Sampling.MaxTotal = %d, want 2000", cfg.Sampling.MaxTotal)
		}
		if cfg.RateLimit.Kaggle != 60 {
			t.Errorf("RateLimit.Kaggle = %d, want 60", cfg.RateLimit.Kaggle)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		isolateHome(t)
		os.Setenv("PAPERFORGE_KAGGLE_USERNAME", "custom-user")
		os.Setenv("PAPERFORGE_KAGGLE_KEY", "custom-key")
		os.Setenv("PAPERFORGE_KAGGLE_BASE_URL", "https://kaggle.example.com/api")
		os.Setenv("PAPERFORGE_LLM_API_KEY", "sk-custom")
		os.Setenv("PAPERFORGE_LLM_MODEL", "gpt-4o")
		os.Setenv("PAPERFORGE_CACHE_TTL", "1h")
		os.Setenv("PAPERFORGE_RESOLVER_MAX_CHECKS_PER_NAME", "4")
		os.Setenv("PAPERFORGE_SAMPLING_PER_CLASS", "50")
		os.Setenv("PAPERFORGE_SAMPLING_MAX_TOTAL", "500")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Kaggle.Username != "custom-user" {
			t.Errorf("Kaggle.Username = %s, want custom-user", cfg.Kaggle.Username)
		}
		if cfg.Kaggle.Key != "custom-key" {
			t.Errorf("Kaggle.Key = %s, want custom-key", cfg.Kaggle.Key)
		}
		if cfg.Kaggle.BaseURL != "https://kaggle.example.com/api" {
			t.Errorf("Kaggle.BaseURL = %s, want https://kaggle.example.com/api", cfg.Kaggle.BaseURL)
		}
		if cfg.LLM.APIKey != "sk-custom" {
			t.Errorf("LLM.APIKey = %s, want sk-custom", cfg.LLM.APIKey)
		}
		if cfg.LLM.Model != "gpt-4o" {
			t.Errorf("LLM.Model = %s, want gpt-4o", cfg.LLM.Model)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.Resolver.MaxChecksPerName != 4 {
			t.Errorf("Resolver.MaxChecksPerName = %d, want 4", cfg.Resolver.MaxChecksPerName)
		}
		if cfg.Sampling.PerClass != 50 {
			t.Errorf("Sampling.PerClass = %d, want 50", cfg.Sampling.PerClass)
		}
		if cfg.Sampling.MaxTotal != 500 {
			t.Errorf("Sampling.MaxTotal = %d, want 500", cfg.Sampling.MaxTotal)
		}
	})

	t.Run("falls back to conventional KAGGLE_ variables", func(t *testing.T) {
		cleanupEnv()
		isolateHome(t)
		os.Setenv("KAGGLE_USERNAME", "conv-user")
		os.Setenv("KAGGLE_KEY", "conv-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Kaggle.Username != "conv-user" {
			t.Errorf("Kaggle.Username = %s, want conv-user", cfg.Kaggle.Username)
		}
		if cfg.Kaggle.Key != "conv-key" {
			t.Errorf("Kaggle.Key = %s, want conv-key", cfg.Kaggle.Key)
		}
	})

	t.Run("falls back to kaggle.json in the home directory", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		home := t.TempDir()
		t.Setenv("HOME", home)
		if err := os.MkdirAll(home+"/.kaggle", 0755); err != nil {
			t.Fatalf("Failed to create .kaggle dir: %v", err)
		}
		creds := `{"username":"json-user","key":"json-key"}`
		if err := os.WriteFile(home+"/.kaggle/kaggle.json", []byte(creds), 0600); err != nil {
			t.Fatalf("Failed to write kaggle.json: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Kaggle.Username != "json-user" {
			t.Errorf("Kaggle.Username = %s, want json-user", cfg.Kaggle.Username)
		}
		if cfg.Kaggle.Key != "json-key" {
			t.Errorf("Kaggle.Key = %s, want json-key", cfg.Kaggle.Key)
		}
	})

	t.Run("fails validation when credentials are missing", func(t *testing.T) {
		cleanupEnv()
		isolateHome(t)
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Kaggle credentials")
		}
	})

	t.Run("fails validation for non-positive probe limit", func(t *testing.T) {
		cleanupEnv()
		isolateHome(t)
		os.Setenv("PAPERFORGE_KAGGLE_USERNAME", "test-user")
		os.Setenv("PAPERFORGE_KAGGLE_KEY", "test-key")
		os.Setenv("PAPERFORGE_RESOLVER_MAX_CHECKS_PER_NAME", "0")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for zero max_checks_per_name")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		err := loadEnvFile()
		if err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		// Create .env file
		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# Another comment
TEST_VAR_3=value3
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		// Clear any existing values
		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_VAR_3") != "value3" {
			t.Errorf("TEST_VAR_3 = %s, want value3", os.Getenv("TEST_VAR_3"))
		}

		// Cleanup
		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
	})

	t.Run("skips empty lines and comments", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		// Create .env file with various formats
		envContent := `
# This is a comment
   # This is also a comment

TEST_SKIP_1=value1

TEST_SKIP_2=value2
# TEST_COMMENTED=should_not_load
`
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_SKIP_1")
		os.Unsetenv("TEST_SKIP_2")
		os.Unsetenv("TEST_COMMENTED")

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_SKIP_1") != "value1" {
			t.Errorf("TEST_SKIP_1 not loaded correctly")
		}
		if os.Getenv("TEST_SKIP_2") != "value2" {
			t.Errorf("TEST_SKIP_2 not loaded correctly")
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}

		os.Unsetenv("TEST_SKIP_1")
		os.Unsetenv("TEST_SKIP_2")
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		// Save current directory
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		// Create temp directory
		tempDir := t.TempDir()
		os.Chdir(tempDir)

		// Set existing env var
		os.Setenv("TEST_OVERRIDE", "existing-value")

		// Create .env file that tries to override
		envContent := "TEST_OVERRIDE=new-value"
		err := os.WriteFile(".env", []byte(envContent), 0644)
		if err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		err = loadEnvFile()
		if err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		// Should still have original value
		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}

		os.Unsetenv("TEST_OVERRIDE")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Kaggle: KaggleConfig{
				Username: "test-user",
				Key:      "test-key",
				BaseURL:  "https://www.kaggle.com/api/v1",
			},
			Resolver: ResolverConfig{
				MaxChecksPerName: 8,
				ScoreBandWidth:   5,
			},
			Sampling: SamplingConfig{
				PerClass: 200,
				MaxTotal: 2000,
			},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		err := validate(valid())
		if err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails when Kaggle key is empty", func(t *testing.T) {
		cfg := valid()
		cfg.Kaggle.Key = ""

		err := validate(cfg)
		if err == nil {
			t.Error("validate() error = nil, want error for empty Kaggle key")
		}
	})

	t.Run("fails for negative score band width", func(t *testing.T) {
		cfg := valid()
		cfg.Resolver.ScoreBandWidth = -1

		err := validate(cfg)
		if err == nil {
			t.Error("validate() error = nil, want error for negative score_band_width")
		}
	})

	t.Run("fails for non-positive sampling caps", func(t *testing.T) {
		cfg := valid()
		cfg.Sampling.MaxTotal = 0

		err := validate(cfg)
		if err == nil {
			t.Error("validate() error = nil, want error for zero max_total")
		}
	})
}
