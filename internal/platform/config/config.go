package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage backends understood by the document store factory.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	MigrationsPath    string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL    string `mapstructure:"FRONTEND_BASE_URL"`

	PosthogAPIKey      string
	RateLimit          string
	AuthRateLimit      string
	CORSAllowedOrigins []string

	Policy   PolicyConfig
	Timezone string

	StorageBackend  string
	StorageLocalDir string
	S3Bucket        string
	S3Prefix        string
	AWSRegion       string
	AWSEndpointURL  string

	PrincipalCacheSize int
	SeedFile           string
}

// PolicyConfig is the raw, validated form of domain.ClaimPolicy.
type PolicyConfig struct {
	// Hour bounds are capped by claims.hours_worked NUMERIC(7,2),
	// rate bounds by claims.hourly_rate NUMERIC(10,2).
	HoursMin          float64  `validate:"gt=0,lte=99999.99"`
	HoursMax          float64  `validate:"gtefield=HoursMin,lte=99999.99"`
	RateMin           float64  `validate:"gt=0,lte=99999999.99"`
	RateMax           float64  `validate:"gtefield=RateMin,lte=99999999.99"`
	ReviewHoursMin    float64  `validate:"gte=0,lte=99999.99"`
	ReviewHoursMax    float64  `validate:"gtefield=ReviewHoursMin,lte=99999.99"`
	ReviewRateMin     float64  `validate:"gte=0,lte=99999999.99"`
	ReviewRateMax     float64  `validate:"gtefield=ReviewRateMin,lte=99999999.99"`
	NotesMaxLength    int      `validate:"gte=0"`
	MaxFileBytes      int64    `validate:"gt=0"`
	AllowedExtensions []string `validate:"min=1,dive,startswith=."`
}

// ClaimPolicy converts the configured bounds into the domain policy.
func (c *Config) ClaimPolicy() domain.ClaimPolicy {
	p := c.Policy
	return domain.ClaimPolicy{
		HoursMin:          decimal.NewFromFloat(p.HoursMin),
		HoursMax:          decimal.NewFromFloat(p.HoursMax),
		RateMin:           decimal.NewFromFloat(p.RateMin),
		RateMax:           decimal.NewFromFloat(p.RateMax),
		ReviewHoursMin:    decimal.NewFromFloat(p.ReviewHoursMin),
		ReviewHoursMax:    decimal.NewFromFloat(p.ReviewHoursMax),
		ReviewRateMin:     decimal.NewFromFloat(p.ReviewRateMin),
		ReviewRateMax:     decimal.NewFromFloat(p.ReviewRateMax),
		NotesMaxLength:    p.NotesMaxLength,
		MaxFileBytes:      p.MaxFileBytes,
		AllowedExtensions: p.AllowedExtensions,
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: invalid CLAIM_TIMEZONE ('%s'). Defaulting to UTC.\n", c.Timezone)
		return time.UTC
	}
	return loc
}

func setDefaults() {
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "lecturer-claims-app")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("AUTH_RATE_LIMIT", "5-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	def := domain.DefaultClaimPolicy()
	viper.SetDefault("CLAIM_HOURS_MIN", def.HoursMin.InexactFloat64())
	viper.SetDefault("CLAIM_HOURS_MAX", def.HoursMax.InexactFloat64())
	viper.SetDefault("CLAIM_RATE_MIN", def.RateMin.InexactFloat64())
	viper.SetDefault("CLAIM_RATE_MAX", def.RateMax.InexactFloat64())
	viper.SetDefault("REVIEW_HOURS_MIN", def.ReviewHoursMin.InexactFloat64())
	viper.SetDefault("REVIEW_HOURS_MAX", def.ReviewHoursMax.InexactFloat64())
	viper.SetDefault("REVIEW_RATE_MIN", def.ReviewRateMin.InexactFloat64())
	viper.SetDefault("REVIEW_RATE_MAX", def.ReviewRateMax.InexactFloat64())
	viper.SetDefault("CLAIM_NOTES_MAX", def.NotesMaxLength)
	viper.SetDefault("UPLOAD_MAX_BYTES", def.MaxFileBytes)
	viper.SetDefault("UPLOAD_ALLOWED_EXTENSIONS", strings.Join(def.AllowedExtensions, ","))
	viper.SetDefault("CLAIM_TIMEZONE", "UTC")

	viper.SetDefault("STORAGE_BACKEND", StorageBackendLocal)
	viper.SetDefault("STORAGE_LOCAL_DIR", "uploads")
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_PREFIX", "claims")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("AWS_ENDPOINT_URL", "")

	viper.SetDefault("PRINCIPAL_CACHE_SIZE", 256)
	viper.SetDefault("SEED_FILE", "seed.toml")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	setDefaults()
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "lecturer-claims-app"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		log.Println("Warning: Google OAuth is not fully configured. Google sign-in will not function.")
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.AuthRateLimit = viper.GetString("AUTH_RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.Policy = PolicyConfig{
		HoursMin:          viper.GetFloat64("CLAIM_HOURS_MIN"),
		HoursMax:          viper.GetFloat64("CLAIM_HOURS_MAX"),
		RateMin:           viper.GetFloat64("CLAIM_RATE_MIN"),
		RateMax:           viper.GetFloat64("CLAIM_RATE_MAX"),
		ReviewHoursMin:    viper.GetFloat64("REVIEW_HOURS_MIN"),
		ReviewHoursMax:    viper.GetFloat64("REVIEW_HOURS_MAX"),
		ReviewRateMin:     viper.GetFloat64("REVIEW_RATE_MIN"),
		ReviewRateMax:     viper.GetFloat64("REVIEW_RATE_MAX"),
		NotesMaxLength:    viper.GetInt("CLAIM_NOTES_MAX"),
		MaxFileBytes:      viper.GetInt64("UPLOAD_MAX_BYTES"),
		AllowedExtensions: normalizeExtensions(splitList(viper.GetString("UPLOAD_ALLOWED_EXTENSIONS"))),
	}
	if err := validator.New().Struct(cfg.Policy); err != nil {
		return nil, fmt.Errorf("invalid claim policy configuration: %w", err)
	}
	cfg.Timezone = viper.GetString("CLAIM_TIMEZONE")

	cfg.StorageBackend = strings.ToLower(viper.GetString("STORAGE_BACKEND"))
	switch cfg.StorageBackend {
	case StorageBackendLocal, StorageBackendS3:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	cfg.StorageLocalDir = viper.GetString("STORAGE_LOCAL_DIR")
	cfg.S3Bucket = viper.GetString("S3_BUCKET")
	cfg.S3Prefix = viper.GetString("S3_PREFIX")
	cfg.AWSRegion = viper.GetString("AWS_REGION")
	cfg.AWSEndpointURL = viper.GetString("AWS_ENDPOINT_URL")
	if cfg.StorageBackend == StorageBackendS3 && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
	}

	cfg.PrincipalCacheSize = viper.GetInt("PRINCIPAL_CACHE_SIZE")
	if cfg.PrincipalCacheSize <= 0 {
		log.Printf("Warning: Invalid PRINCIPAL_CACHE_SIZE (%d). Defaulting to 256.\n", cfg.PrincipalCacheSize)
		cfg.PrincipalCacheSize = 256
	}
	cfg.SeedFile = viper.GetString("SEED_FILE")

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
