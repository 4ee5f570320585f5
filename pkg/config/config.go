package config

import (
	"fmt"
	"time"
)

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Dialog         DialogConfig         `mapstructure:"dialog"`
	Queue          QueueConfig          `mapstructure:"queue"`
	Redis          RedisConfig          `mapstructure:"redis"`
	NATS           NATSConfig           `mapstructure:"nats"`
	RabbitMQ       RabbitMQConfig       `mapstructure:"rabbitmq"`
	NLU            NLUConfig            `mapstructure:"nlu"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	RateLimiting   RateLimitingConfig   `mapstructure:"rate_limiting"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	CORS           CORSConfig           `mapstructure:"cors"`
	Region         RegionConfig         `mapstructure:"region"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DialogConfig struct {
	IntentName string `mapstructure:"intent_name"`
}

type QueueConfig struct {
	// Driver selects the backend: nats, rabbitmq or redis
	Driver        string `mapstructure:"driver"`
	OrdersQueue   string `mapstructure:"orders_queue"`
	ConsumeOrders bool   `mapstructure:"consume_orders"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	// Storage is the JetStream stream storage: file or memory
	Storage      string        `mapstructure:"storage"`
	StreamMaxAge time.Duration `mapstructure:"stream_max_age"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

type NLUConfig struct {
	URL      string        `mapstructure:"url"`
	APIKey   string        `mapstructure:"api_key"`
	BotName  string        `mapstructure:"bot_name"`
	BotAlias string        `mapstructure:"bot_alias"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type OpenTelemetryConfig struct {
	Enabled     bool         `mapstructure:"enabled"`
	Jaeger      JaegerConfig `mapstructure:"jaeger"`
	ServiceName string       `mapstructure:"service_name"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      int           `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposeHeaders  []string `mapstructure:"expose_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}

type RegionConfig struct {
	Timezone string `mapstructure:"timezone"`
	Locale   string `mapstructure:"locale"`
}

// Location resolves the configured timezone used for date validation
func (r RegionConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid region.timezone %q: %w", r.Timezone, err)
	}
	return loc, nil
}

// Validate reports configuration that cannot start the service
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}

	switch c.Queue.Driver {
	case "nats":
		if c.NATS.URL == "" {
			return fmt.Errorf("nats.url is required for queue driver nats")
		}
		if c.NATS.Storage != "file" && c.NATS.Storage != "memory" {
			return fmt.Errorf("nats.storage must be file or memory; got %q", c.NATS.Storage)
		}
	case "rabbitmq":
		if c.RabbitMQ.URL == "" {
			return fmt.Errorf("rabbitmq.url is required for queue driver rabbitmq")
		}
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for queue driver redis")
		}
	default:
		return fmt.Errorf("queue.driver must be one of nats, rabbitmq, redis; got %q", c.Queue.Driver)
	}

	if c.Queue.OrdersQueue == "" {
		return fmt.Errorf("queue.orders_queue is required")
	}
	if c.Dialog.IntentName == "" {
		return fmt.Errorf("dialog.intent_name is required")
	}
	if _, err := c.Region.Location(); err != nil {
		return err
	}
	return nil
}
