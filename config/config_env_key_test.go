package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"platform": map[string]any{
			"baseUrl":   "https://example.com",
			"tokenPath": "/oauth/token",
		},
		"auth": map[string]any{
			"refreshWindow": "5m",
			"webAuth": map[string]any{
				"stepTimeout": "30s",
			},
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "PLATFORM_BASEURL", want: "platform.baseUrl"},
		{envKey: "PLATFORM_TOKENPATH", want: "platform.tokenPath"},
		{envKey: "AUTH_REFRESHWINDOW", want: "auth.refreshWindow"},
		{envKey: "AUTH_WEBAUTH_STEPTIMEOUT", want: "auth.webAuth.stepTimeout"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults_FillsLifecycleWindows(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Auth.DefaultTokenExpiration != defaultTokenExpiration {
		t.Fatalf("DefaultTokenExpiration = %v, want %v", cfg.Auth.DefaultTokenExpiration, defaultTokenExpiration)
	}
	if cfg.Auth.RefreshWindow != defaultRefreshWindow {
		t.Fatalf("RefreshWindow = %v, want %v", cfg.Auth.RefreshWindow, defaultRefreshWindow)
	}
	if cfg.Platform.RefreshPath != cfg.Platform.TokenPath {
		t.Fatalf("RefreshPath = %q, want token path %q", cfg.Platform.RefreshPath, cfg.Platform.TokenPath)
	}
}

func TestApplyDefaults_WebAuthSelectors(t *testing.T) {
	cfg := &Config{}
	cfg.Platform.BaseURL = "https://fit.example.com/"
	cfg.Auth.WebAuth = &WebAuthConfig{}
	applyDefaults(cfg)

	web := cfg.Auth.WebAuth
	if web.LoginURL != "https://fit.example.com/login" {
		t.Fatalf("LoginURL = %q", web.LoginURL)
	}
	if web.AuthenticatedURL != "https://fit.example.com/dashboard" {
		t.Fatalf("AuthenticatedURL = %q", web.AuthenticatedURL)
	}
	if web.UsernameSelector == "" || web.PasswordSelector == "" || web.SubmitSelector == "" {
		t.Fatal("expected selector defaults to be populated")
	}
	if web.StepTimeout != defaultStepTimeout {
		t.Fatalf("StepTimeout = %v, want %v", web.StepTimeout, defaultStepTimeout)
	}
}
