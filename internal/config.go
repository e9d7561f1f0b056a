package internal

import (
	"fmt"
	"time"
)

// Config is the server configuration, read from the environment.
type Config struct {
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=5001"`
	AdminPort       int           `env:"ADMIN_PORT,default=5002"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=15s"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=168h"`
	CookieSecure      bool          `env:"COOKIE_SECURE,default=true"`
	AllowedOrigins    string        `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	BodyLimit         int           `env:"BODY_LIMIT,default=10485760"`
	AccessLog         bool          `env:"ACCESS_LOG,default=true"`

	PresenceStrictUnregister bool          `env:"PRESENCE_STRICT_UNREGISTER,default=false"`
	LifecycleBufferSize      int           `env:"LIFECYCLE_BUFFER_SIZE,default=1024"`
	ConnectionBufferSize     int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	PushTimeout              time.Duration `env:"PUSH_TIMEOUT,default=2s"`
	PingInterval             time.Duration `env:"PING_INTERVAL,default=30s"`
	WriteTimeout             time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	ReadLimit                int64         `env:"READ_LIMIT,default=512"`

	S3Region        string `env:"S3_REGION,default=us-east-1"`
	S3BaseEndpoint  string `env:"S3_BASE_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY,required=true"`
	S3SecretKey     string `env:"S3_SECRET_KEY,required=true"`
	S3Bucket        string `env:"S3_BUCKET,default=chatline"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL,required=true"`
	MaxImageBytes   int    `env:"MAX_IMAGE_BYTES,default=5242880"`
}

// Validate checks the values go-env cannot express as tags.
func (c Config) Validate() error {
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.JWTSecret))
	}
	if c.LifecycleBufferSize < 1 || c.ConnectionBufferSize < 1 {
		return fmt.Errorf("LIFECYCLE_BUFFER_SIZE and CONNECTION_BUFFER_SIZE must be positive")
	}
	if c.PushTimeout <= 0 {
		return fmt.Errorf("PUSH_TIMEOUT must be positive, got %s", c.PushTimeout)
	}
	if c.PingInterval <= 0 {
		return fmt.Errorf("PING_INTERVAL must be positive, got %s", c.PingInterval)
	}
	return nil
}
