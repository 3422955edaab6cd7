package config

import "time"

// Default configuration values.
const (
	defaultServiceName = "deeplink-server"
	defaultServicePort = 8080
	defaultVersion     = "0.1.0"
	defaultDomain      = "localhost:8080"

	defaultAppScheme   = "faix"
	defaultAppPackage  = "com.nfc.faix"
	defaultIOSTeamID   = "EAYXYBF4LF"
	defaultIOSBundleID = "com.82fai.faix"

	defaultAndroidStoreURL = "https://play.google.com/store/apps/details?id=com.nfc.faix"
	defaultIOSStoreURL     = "https://apps.apple.com/us/app/fai-x/id6737755560"
	defaultLandingPage     = "https://fai-x.com/"

	defaultDBPath          = "./data/referrals.json"
	defaultClickExpiryDays = 30
	defaultCleanupInterval = 24 * time.Hour

	defaultRateLimitWindow = 15 * time.Minute
	defaultRateLimitMax    = 100

	defaultLoggingLevel = "info"
	defaultLoggingFmt   = "json"
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	App       AppConfig       `yaml:"app"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"PORT"      yaml:"port"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
	// Domain is the externally visible host (and optional port) embedded in
	// generated share, short, and probe links.
	Domain string `env:"DOMAIN" yaml:"domain"`
}

// AppConfig describes the mobile app the deep links target.
type AppConfig struct {
	// Scheme is the custom URL scheme registered by the app.
	Scheme string `env:"APP_SCHEME" yaml:"scheme"`
	// Package is the Android application id used in intent URLs.
	Package string `env:"APP_PACKAGE" yaml:"package"`
	// IOSTeamID and IOSBundleID form the appID served in
	// apple-app-site-association.
	IOSTeamID   string `env:"IOS_TEAM_ID"   yaml:"ios_team_id"`
	IOSBundleID string `env:"IOS_BUNDLE_ID" yaml:"ios_bundle_id"`
	// AndroidCertSHA256 is the signing certificate fingerprint served in
	// assetlinks.json.
	AndroidCertSHA256 string `env:"ANDROID_CERT_SHA256" yaml:"android_cert_sha256"`
}

// StoreConfig holds the app store listing and landing page URLs that redirect
// targets are built from.
type StoreConfig struct {
	AndroidURL  string `env:"ANDROID_STORE" yaml:"android_url"`
	IOSURL      string `env:"IOS_STORE"     yaml:"ios_url"`
	LandingPage string `env:"LANDING_PAGE"  yaml:"landing_page"`
}

// DatabaseConfig holds the JSON file store configuration.
type DatabaseConfig struct {
	// Path is the location of the referral JSON file.
	Path string `env:"DB_PATH" yaml:"path"`
	// ClickExpiryDays is the retention window for attribution records.
	ClickExpiryDays int `env:"CLICK_EXPIRY_DAYS" yaml:"click_expiry_days"`
	// CleanupInterval is how often the expiry sweep runs.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// RetentionWindow returns the record retention window as a duration.
func (d *DatabaseConfig) RetentionWindow() time.Duration {
	return time.Duration(d.ClickExpiryDays) * 24 * time.Hour
}

// RateLimitConfig holds admission control configuration for the API tier.
type RateLimitConfig struct {
	Window      time.Duration `env:"RATE_LIMIT_WINDOW"       yaml:"window"`
	MaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS" yaml:"max_requests"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)
	// Re-apply env overrides after defaults (env always wins).
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setAppDefaults(&cfg.App)
	setStoreDefaults(&cfg.Store)
	setDatabaseDefaults(&cfg.Database)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.Domain == "" {
		svc.Domain = defaultDomain
	}
}

func setAppDefaults(app *AppConfig) {
	if app.Scheme == "" {
		app.Scheme = defaultAppScheme
	}
	if app.Package == "" {
		app.Package = defaultAppPackage
	}
	if app.IOSTeamID == "" {
		app.IOSTeamID = defaultIOSTeamID
	}
	if app.IOSBundleID == "" {
		app.IOSBundleID = defaultIOSBundleID
	}
}

func setStoreDefaults(store *StoreConfig) {
	if store.AndroidURL == "" {
		store.AndroidURL = defaultAndroidStoreURL
	}
	if store.IOSURL == "" {
		store.IOSURL = defaultIOSStoreURL
	}
	if store.LandingPage == "" {
		store.LandingPage = defaultLandingPage
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Path == "" {
		db.Path = defaultDBPath
	}
	if db.ClickExpiryDays == 0 {
		db.ClickExpiryDays = defaultClickExpiryDays
	}
	if db.CleanupInterval == 0 {
		db.CleanupInterval = defaultCleanupInterval
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.Window == 0 {
		rl.Window = defaultRateLimitWindow
	}
	if rl.MaxRequests == 0 {
		rl.MaxRequests = defaultRateLimitMax
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFmt
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if c.Service.Domain == "" {
		return &ValidationError{Field: "service.domain", Message: "is required"}
	}
	if c.App.Scheme == "" {
		return &ValidationError{Field: "app.scheme", Message: "is required"}
	}
	if c.Database.Path == "" {
		return &ValidationError{Field: "database.path", Message: "is required"}
	}
	if c.Database.ClickExpiryDays < 1 {
		return &ValidationError{Field: "database.click_expiry_days", Message: "must be at least 1"}
	}
	if c.RateLimit.MaxRequests < 1 {
		return &ValidationError{Field: "rate_limit.max_requests", Message: "must be at least 1"}
	}
	if c.RateLimit.Window <= 0 {
		return &ValidationError{Field: "rate_limit.window", Message: "must be positive"}
	}
	return nil
}
