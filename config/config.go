package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath = "."

	defaultTokenExpiration = time.Hour
	defaultRefreshWindow   = 5 * time.Minute
	defaultStepTimeout     = 30 * time.Second
	defaultRequestTimeout  = 30 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	// Platform describes the fitness platform the client talks to.
	Platform PlatformConfig `json:"platform" yaml:"platform"`

	// Auth holds token lifecycle settings and the optional browser login block.
	Auth AuthConfig `json:"auth" yaml:"auth"`

	// Storage configures where the session is persisted between runs.
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// PlatformConfig defines how to reach the fitness platform's endpoints.
type PlatformConfig struct {
	BaseURL   string            `json:"baseUrl" yaml:"baseUrl"`
	Timeout   time.Duration     `json:"timeout" yaml:"timeout"`
	UserAgent string            `json:"userAgent" yaml:"userAgent"`
	Headers   map[string]string `json:"headers" yaml:"headers"`

	// Paths relative to BaseURL. The token and profile paths double as the URL
	// patterns matched during browser-login network interception.
	TokenPath    string `json:"tokenPath" yaml:"tokenPath"`
	RefreshPath  string `json:"refreshPath" yaml:"refreshPath"`
	ProfilePath  string `json:"profilePath" yaml:"profilePath"`
	WorkoutsPath string `json:"workoutsPath" yaml:"workoutsPath"`
}

// AuthConfig defines token lifecycle windows and strategy selection.
// A present WebAuth block selects the browser-automation login strategy.
type AuthConfig struct {
	// DefaultTokenExpiration is applied to freshly issued tokens because the
	// platform does not reliably report its own expiry.
	DefaultTokenExpiration time.Duration `json:"defaultTokenExpiration" yaml:"defaultTokenExpiration"`

	// RefreshWindow is how long before expiry a token is flagged for renewal.
	RefreshWindow time.Duration `json:"refreshWindow" yaml:"refreshWindow"`

	WebAuth *WebAuthConfig `json:"webAuth" yaml:"webAuth"`
}

// WebAuthConfig configures the browser-automation login flow. The selectors
// describe an external, brittle login form contract and are overridable per
// deployment.
type WebAuthConfig struct {
	Headless       bool          `json:"headless" yaml:"headless"`
	ExecutablePath string        `json:"executablePath" yaml:"executablePath"`
	StepTimeout    time.Duration `json:"stepTimeout" yaml:"stepTimeout"`

	LoginURL         string `json:"loginUrl" yaml:"loginUrl"`
	AuthenticatedURL string `json:"authenticatedUrl" yaml:"authenticatedUrl"`

	UsernameSelector string `json:"usernameSelector" yaml:"usernameSelector"`
	PasswordSelector string `json:"passwordSelector" yaml:"passwordSelector"`
	SubmitSelector   string `json:"submitSelector" yaml:"submitSelector"`
	ConsentSelector  string `json:"consentSelector" yaml:"consentSelector"`
	ErrorSelector    string `json:"errorSelector" yaml:"errorSelector"`
}

// StorageConfig configures the file-backed session store.
type StorageConfig struct {
	Path string `json:"path" yaml:"path"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: AUTH_REFRESHWINDOW -> auth.refreshWindow (not auth.refreshwindow)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills in lifecycle windows and endpoint paths the config file
// may omit.
func applyDefaults(cfg *Config) {
	if cfg.Auth.DefaultTokenExpiration <= 0 {
		cfg.Auth.DefaultTokenExpiration = defaultTokenExpiration
	}
	if cfg.Auth.RefreshWindow <= 0 {
		cfg.Auth.RefreshWindow = defaultRefreshWindow
	}
	if cfg.Platform.Timeout <= 0 {
		cfg.Platform.Timeout = defaultRequestTimeout
	}
	if cfg.Platform.TokenPath == "" {
		cfg.Platform.TokenPath = "/oauth/token"
	}
	if cfg.Platform.RefreshPath == "" {
		cfg.Platform.RefreshPath = cfg.Platform.TokenPath
	}
	if cfg.Platform.ProfilePath == "" {
		cfg.Platform.ProfilePath = "/api/v1/user/profile"
	}
	if cfg.Platform.WorkoutsPath == "" {
		cfg.Platform.WorkoutsPath = "/api/v1/workouts"
	}

	if web := cfg.Auth.WebAuth; web != nil {
		if web.StepTimeout <= 0 {
			web.StepTimeout = defaultStepTimeout
		}
		if web.LoginURL == "" {
			web.LoginURL = strings.TrimSuffix(cfg.Platform.BaseURL, "/") + "/login"
		}
		if web.AuthenticatedURL == "" {
			web.AuthenticatedURL = strings.TrimSuffix(cfg.Platform.BaseURL, "/") + "/dashboard"
		}
		if web.UsernameSelector == "" {
			web.UsernameSelector = `input[name="username"]`
		}
		if web.PasswordSelector == "" {
			web.PasswordSelector = `input[name="password"]`
		}
		if web.SubmitSelector == "" {
			web.SubmitSelector = `button[type="submit"]`
		}
		if web.ConsentSelector == "" {
			web.ConsentSelector = `button[data-testid="cookie-accept"]`
		}
		if web.ErrorSelector == "" {
			web.ErrorSelector = `[role="alert"]`
		}
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
