package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxNearbyRadiusKm caps NEARBY_MAX_RADIUS_KM.
const MaxNearbyRadiusKm = 50.0

type Config struct {
	// Database
	StoreDriver string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Staff sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Citizen verification codes
	OTPTTL time.Duration

	NearbyMaxRadiusKm float64

	// Mail
	MailDriver   string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Media storage
	StorageDriver  string
	MediaDir       string
	MediaBaseURL   string
	MaxUploadFiles int
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
	S3PresignTTL   time.Duration

	// Server
	Port         string
	CORSOrigins  string
	BodyLimitMB  int
	LogRetention time.Duration
	SentryDSN    string
	AppEnv       string
}

// Load reads configuration from the environment. When CONFIG_FILE points
// to a YAML file its keys (DB_HOST or db_host) act as defaults that the
// environment still overrides.
func Load() (*Config, error) {
	file, err := readFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	src := source{file: file}

	return &Config{
		StoreDriver: src.get("STORE_DRIVER", "postgres"),
		DBHost:      src.get("DB_HOST", "localhost"),
		DBPort:      src.get("DB_PORT", "5432"),
		DBUser:      src.get("DB_USER", "postgres"),
		DBPassword:  src.get("DB_PASSWORD", ""),
		DBName:      src.get("DB_NAME", "citizen_reports"),
		DBSSLMode:   src.get("DB_SSLMODE", "disable"),

		SessionSecret: src.get("SESSION_SECRET", ""),
		SessionTTL:    parseDuration(src.get("SESSION_TTL", "8h"), 8*time.Hour),

		OTPTTL: parseDuration(src.get("OTP_TTL", "3m"), 3*time.Minute),

		NearbyMaxRadiusKm: min(parseFloat(src.get("NEARBY_MAX_RADIUS_KM", "50"), 50), MaxNearbyRadiusKm),

		MailDriver:   src.get("MAIL_DRIVER", "smtp"),
		SMTPHost:     src.get("SMTP_HOST", ""),
		SMTPPort:     src.get("SMTP_PORT", "465"),
		SMTPUser:     src.get("SMTP_USER", ""),
		SMTPPassword: src.get("SMTP_PASSWORD", ""),
		SMTPFrom:     src.get("SMTP_FROM", ""),

		StorageDriver:  src.get("STORAGE_DRIVER", "local"),
		MediaDir:       src.get("MEDIA_DIR", "media"),
		MediaBaseURL:   src.get("MEDIA_BASE_URL", "/media"),
		MaxUploadFiles: parseInt(src.get("MAX_UPLOAD_FILES", "10"), 10),
		S3Endpoint:     src.get("S3_ENDPOINT", ""),
		S3Region:       src.get("S3_REGION", "us-east-1"),
		S3Bucket:       src.get("S3_BUCKET", ""),
		S3AccessKey:    src.get("S3_ACCESS_KEY", ""),
		S3SecretKey:    src.get("S3_SECRET_KEY", ""),
		S3UsePathStyle: src.get("S3_USE_PATH_STYLE", "true") == "true",
		S3PresignTTL:   parseDuration(src.get("S3_PRESIGN_TTL", "15m"), 15*time.Minute),

		Port:         src.get("PORT", "8000"),
		CORSOrigins:  src.get("CORS_ORIGINS", "*"),
		BodyLimitMB:  parseInt(src.get("BODY_LIMIT_MB", "50"), 50),
		LogRetention: parseDuration(src.get("LOG_RETENTION", "720h"), 30*24*time.Hour),
		SentryDSN:    src.get("SENTRY_DSN", ""),
		AppEnv:       src.get("APP_ENV", "development"),
	}, nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// SMTPEnabled reports whether enough SMTP settings are present to send mail.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPassword != ""
}

type source struct {
	file map[string]string
}

func (s source) get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if val, ok := s.file[key]; ok && val != "" {
		return val
	}
	return fallback
}

func readFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config file %s: top level must be a mapping", path)
	}
	var doc map[string]interface{}
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		out[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return out, nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}
