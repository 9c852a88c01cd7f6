package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"nutriportions/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port string

	DBDriver   string // postgres | sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	SQLitePath string

	JWTSecret string

	AWSRegion     string
	S3Bucket      string
	CloudFrontURL string
	SESEmail      string
	SNSFCMArn     string
	SNSAPNSArn    string

	AnalyzeURL     string
	AnalyzeAPIKey  string
	AnalyzeTimeout time.Duration

	GoogleClientID string
	AppleClientID  string

	Timezone          *time.Location
	CORSOrigins       []string
	SchedulerInterval time.Duration

	LogLevel  string
	LogPretty bool
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	tzName := getenv("APP_TIMEZONE", "Asia/Jerusalem")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", tzName, err)
	}

	cfg := &Config{
		Port:              getenv("PORT", "8080"),
		DBDriver:          getenv("DB_DRIVER", "postgres"),
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            getenv("DB_PORT", "5432"),
		SQLitePath:        getenv("SQLITE_PATH", "nutriportions.db"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AWSRegion:         os.Getenv("AWS_REGION"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		CloudFrontURL:     os.Getenv("CLOUDFRONT_URL"),
		SESEmail:          os.Getenv("SES_EMAIL"),
		SNSFCMArn:         os.Getenv("SNS_FCM_ARN"),
		SNSAPNSArn:        os.Getenv("SNS_APNS_ARN"),
		AnalyzeURL:        os.Getenv("AI_ANALYZE_URL"),
		AnalyzeAPIKey:     os.Getenv("AI_API_KEY"),
		AnalyzeTimeout:    getDuration("AI_TIMEOUT", 60*time.Second),
		GoogleClientID:    os.Getenv("GOOGLE_CLIENT_ID"),
		AppleClientID:     os.Getenv("APPLE_CLIENT_ID"),
		Timezone:          loc,
		CORSOrigins:       splitList(getenv("CORS_ORIGINS", "*")),
		SchedulerInterval: getDuration("SCHEDULER_INTERVAL", time.Minute),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogPretty:         getBool("LOG_PRETTY", false),
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	return cfg, nil
}

// AWSEnabled reports whether AWS clients should be built.
func (c *Config) AWSEnabled() bool { return c.AWSRegion != "" }

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(c.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
}

// InitDB opens the configured database and migrates it.
func InitDB(c *Config) (*gorm.DB, error) {
	d, err := c.dialector()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Str("pkg", "config").Str("driver", c.DBDriver).Msg("database ready")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return nil
}

// LoadAWS builds the shared AWS config for S3, SES, SNS and Rekognition.
func LoadAWS(ctx context.Context, c *Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.AWSRegion))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Warn().Str("pkg", "config").Str("key", key).Str("value", v).Msg("bad duration, using default")
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
