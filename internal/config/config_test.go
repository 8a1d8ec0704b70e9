package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Save original environment
	originalEnv := make(map[string]string)
	envVars := []string{
		"ENVIRONMENT",
		"PORT",
		"LOG_LEVEL",
		"LOG_JSON",
		"SUBDOMAIN_OFFSET",
		"BASE_PATH",
		"JWT_SECRET",
		"JWT_EXPIRY_HOURS",
		"RATE_LIMIT_RPS",
		"RATE_LIMIT_BURST",
	}

	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}

	// Restore environment after test
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*Config)
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{},
			check: func(config *Config) {
				if config.Environment != "development" {
					t.Errorf("Expected default environment development, got %s", config.Environment)
				}
				if config.Port != "8080" {
					t.Errorf("Expected default port 8080, got %s", config.Port)
				}
				if config.Log.Level != "info" {
					t.Errorf("Expected default log level info, got %s", config.Log.Level)
				}
				if config.Log.JSON {
					t.Error("Expected default log format to be text")
				}
				if config.Proxy.SubdomainOffset != 2 {
					t.Errorf("Expected default subdomain offset 2, got %d", config.Proxy.SubdomainOffset)
				}
				if config.Proxy.BasePath != "" {
					t.Errorf("Expected empty default base path, got %s", config.Proxy.BasePath)
				}
				if config.JWT.ExpiryHours != 24 {
					t.Errorf("Expected default JWT expiry 24h, got %d", config.JWT.ExpiryHours)
				}
				if config.RateLimit.RequestsPerSecond != 10.0 {
					t.Errorf("Expected default rate limit 10 rps, got %f", config.RateLimit.RequestsPerSecond)
				}
				if config.RateLimit.Burst != 20 {
					t.Errorf("Expected default burst 20, got %d", config.RateLimit.Burst)
				}
			},
		},
		{
			name: "custom configuration",
			envVars: map[string]string{
				"ENVIRONMENT":      "production",
				"PORT":             "9000",
				"LOG_LEVEL":        "debug",
				"LOG_JSON":         "true",
				"SUBDOMAIN_OFFSET": "3",
				"BASE_PATH":        "/stage",
				"JWT_SECRET":       "prod-secret",
				"JWT_EXPIRY_HOURS": "8",
				"RATE_LIMIT_RPS":   "50",
				"RATE_LIMIT_BURST": "100",
			},
			check: func(config *Config) {
				if config.Environment != "production" {
					t.Errorf("Expected environment production, got %s", config.Environment)
				}
				if config.Port != "9000" {
					t.Errorf("Expected port 9000, got %s", config.Port)
				}
				if config.Log.Level != "debug" {
					t.Errorf("Expected log level debug, got %s", config.Log.Level)
				}
				if !config.Log.JSON {
					t.Error("Expected JSON logging enabled")
				}
				if config.Proxy.SubdomainOffset != 3 {
					t.Errorf("Expected subdomain offset 3, got %d", config.Proxy.SubdomainOffset)
				}
				if config.Proxy.BasePath != "/stage" {
					t.Errorf("Expected base path /stage, got %s", config.Proxy.BasePath)
				}
				if config.JWT.Secret != "prod-secret" {
					t.Errorf("Expected custom JWT secret, got %s", config.JWT.Secret)
				}
				if config.RateLimit.RequestsPerSecond != 50 {
					t.Errorf("Expected rate limit 50 rps, got %f", config.RateLimit.RequestsPerSecond)
				}
			},
		},
		{
			name: "invalid environment rejected",
			envVars: map[string]string{
				"ENVIRONMENT": "bogus",
			},
			wantErr: true,
		},
		{
			name: "invalid log level rejected",
			envVars: map[string]string{
				"LOG_LEVEL": "shouting",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}
			defer func() {
				for key := range tt.envVars {
					os.Unsetenv(key)
				}
			}()

			config, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected configuration to be rejected")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected configuration to load, got %v", err)
			}
			tt.check(config)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	os.Setenv("HELPER_STR", "value")
	os.Setenv("HELPER_INT", "42")
	os.Setenv("HELPER_BOOL", "true")
	os.Setenv("HELPER_BAD_INT", "not-a-number")
	defer func() {
		os.Unsetenv("HELPER_STR")
		os.Unsetenv("HELPER_INT")
		os.Unsetenv("HELPER_BOOL")
		os.Unsetenv("HELPER_BAD_INT")
	}()

	if got := GetEnv("HELPER_STR", "fallback"); got != "value" {
		t.Errorf("Expected value, got %s", got)
	}
	if got := GetEnv("HELPER_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %s", got)
	}
	if got := GetEnvAsInt("HELPER_INT", 7); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}
	if got := GetEnvAsInt("HELPER_BAD_INT", 7); got != 7 {
		t.Errorf("Expected fallback 7, got %d", got)
	}
	if got := GetEnvAsBool("HELPER_BOOL", false); !got {
		t.Error("Expected true")
	}
	if got := GetEnvAsBool("HELPER_MISSING", true); !got {
		t.Error("Expected fallback true")
	}
}
