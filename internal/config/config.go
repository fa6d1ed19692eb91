package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"voiceagent-platform/internal/provider"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App   AppConfig
	Store StoreConfig
	DB    DBConfig
	Redis RedisConfig
	Voice VoiceConfig
	Model ModelConfig
}

type AppConfig struct {
	Env  string
	Port int
}

// StoreConfig selects the persistence implementation at startup.
type StoreConfig struct {
	// Driver is "postgres" or "memory".
	Driver string

	// DefaultCountryCode feeds phone normalization.
	DefaultCountryCode string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

// RedisConfig is optional; an empty Host disables the dial throttle.
type RedisConfig struct {
	Host string
	Port int

	DialThrottleWindow time.Duration
}

// VoiceConfig is the voice-provider credential and outbound defaults.
type VoiceConfig struct {
	APIKey  string
	BaseURL string

	AgentID       string
	PhoneNumberID string
	FirstMessage  string

	Provider        string
	VoiceID         string
	Stability       float64
	SimilarityBoost float64
	Style           float64
	UseSpeakerBoost bool
}

type ModelConfig struct {
	Provider    string
	Name        string
	Temperature float64
}

const defaultVoiceBaseURL = "https://api.vapi.ai"

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	if n, err := mustInt("APP_PORT"); err != nil {
		parseErrs = append(parseErrs, err)
	} else {
		c.App.Port = n
	}

	c.Store.Driver = strings.TrimSpace(os.Getenv("STORE_DRIVER"))
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	c.Store.DefaultCountryCode = strings.TrimSpace(os.Getenv("DEFAULT_COUNTRY_CODE"))
	if c.Store.DefaultCountryCode == "" {
		c.Store.DefaultCountryCode = "92"
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.DB.Port = optInt("DB_PORT")
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port = optInt("REDIS_PORT")
	c.Redis.DialThrottleWindow = optDuration("DIAL_THROTTLE_WINDOW")

	c.Voice.APIKey = os.Getenv("VOICE_API_KEY")
	c.Voice.BaseURL = strings.TrimSpace(os.Getenv("VOICE_API_BASE_URL"))
	if c.Voice.BaseURL == "" {
		c.Voice.BaseURL = defaultVoiceBaseURL
	}
	c.Voice.AgentID = strings.TrimSpace(os.Getenv("VOICE_AGENT_ID"))
	c.Voice.PhoneNumberID = strings.TrimSpace(os.Getenv("VOICE_PHONE_NUMBER_ID"))
	c.Voice.FirstMessage = strings.TrimSpace(os.Getenv("VOICE_FIRST_MESSAGE"))
	c.Voice.Provider = strings.TrimSpace(os.Getenv("VOICE_PROVIDER"))
	c.Voice.VoiceID = strings.TrimSpace(os.Getenv("VOICE_VOICE_ID"))
	c.Voice.Stability = optFloat("VOICE_STABILITY")
	c.Voice.SimilarityBoost = optFloat("VOICE_SIMILARITY")
	c.Voice.Style = optFloat("VOICE_STYLE")
	c.Voice.UseSpeakerBoost = optBool("VOICE_SPEAKER_BOOST")

	c.Model.Provider = strings.TrimSpace(os.Getenv("MODEL_PROVIDER"))
	if c.Model.Provider == "" {
		c.Model.Provider = "openai"
	}
	c.Model.Name = strings.TrimSpace(os.Getenv("MODEL_NAME"))
	if c.Model.Name == "" {
		c.Model.Name = "gpt-4o"
	}
	c.Model.Temperature = optFloat("MODEL_TEMPERATURE")
	if c.Model.Temperature == 0 {
		c.Model.Temperature = 0.7
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	switch c.Store.Driver {
	case "memory":
		// no further requirements
	case "postgres":
		if c.DB.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required when STORE_DRIVER=postgres"))
		}
		if c.DB.Port <= 0 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
		}
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required when STORE_DRIVER=postgres"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required when STORE_DRIVER=postgres"))
		}
		if c.DB.SSLMode == "" {
			if c.IsProduction() {
				errs = append(errs, errors.New("DB_SSLMODE is required in production"))
			} else {
				// Local-friendly default; production must be explicit.
				c.DB.SSLMode = "disable"
			}
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be memory or postgres, got %q", c.Store.Driver))
	}

	if c.Redis.Host != "" && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port when REDIS_HOST is set, got %d", c.Redis.Port))
	}

	if c.IsProduction() && c.Voice.APIKey == "" {
		errs = append(errs, errors.New("VOICE_API_KEY is required in production"))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// RedisEnabled reports whether the optional dial throttle should be wired.
func (c Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// AgentDefaults maps configuration onto the provider's outbound defaults.
func (c Config) AgentDefaults() provider.AgentDefaults {
	return provider.AgentDefaults{
		AgentID:       c.Voice.AgentID,
		PhoneNumberID: c.Voice.PhoneNumberID,
		FirstMessage:  c.Voice.FirstMessage,
		Voice: provider.VoiceSettings{
			Provider:        c.Voice.Provider,
			VoiceID:         c.Voice.VoiceID,
			Stability:       c.Voice.Stability,
			SimilarityBoost: c.Voice.SimilarityBoost,
			Style:           c.Voice.Style,
			UseSpeakerBoost: c.Voice.UseSpeakerBoost,
		},
		ModelProvider:    c.Model.Provider,
		ModelName:        c.Model.Name,
		ModelTemperature: c.Model.Temperature,
	}
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func optFloat(key string) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func optBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

func optDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
