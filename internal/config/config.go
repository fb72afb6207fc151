// Package config provides structures and loading of the application config.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the top-level application configuration.
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer      `yaml:"http_server"`
	CMS             `yaml:"cms"`
	Cookies         `yaml:"cookies"`
	FreeTier        `yaml:"free_tier"`
	RedisConnection `yaml:"redis_connection"`
	RabbitMQ        `yaml:"rabbitmq"`
}

// HTTPServer holds the HTTP server settings.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// CMS holds the connection settings for the headless CMS backend.
type CMS struct {
	BaseURL        string        `yaml:"base_url" env:"CMS_BASE_URL"`
	ServiceToken   string        `yaml:"service_token" env:"CMS_SERVICE_TOKEN"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
	RetryAttempts  int           `yaml:"retry_attempts" env-default:"3"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" env-default:"1s"`
	RetryMaxDelay  time.Duration `yaml:"retry_max_delay" env-default:"10s"`
}

// Cookies holds the session cookie settings.
type Cookies struct {
	Secure     bool          `yaml:"secure" env:"COOKIES_SECURE" env-default:"false"`
	AccessTTL  time.Duration `yaml:"access_ttl" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env-default:"168h"`
}

// FreeTier holds the freemium gating settings.
type FreeTier struct {
	Limit int `yaml:"limit" env:"FREE_TIER_LIMIT" env-default:"3"`
}

// RedisConnection holds the redis settings. An empty address disables
// the refresh single-flight lock.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQ holds the broker settings for auth event publishing.
// An empty URL disables publishing.
type RabbitMQ struct {
	URL      string `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string `yaml:"exchange" env-default:"auth_events"`
}

// MustLoad loads the config from the file pointed to by CONFIG_PATH
// and terminates the process when it cannot be read.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"CMS:\n"+
			"  BaseURL: %s\n"+
			"  ServiceToken: [redacted]\n"+
			"  RequestTimeout: %s\n"+
			"Cookies:\n"+
			"  Secure: %t\n"+
			"  AccessTTL: %s\n"+
			"  RefreshTTL: %s\n"+
			"FreeTier:\n"+
			"  Limit: %d\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"RabbitMQ:\n"+
			"  Exchange: %s\n",
		c.Env,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.BaseURL,
		c.RequestTimeout,
		c.Secure,
		c.AccessTTL,
		c.RefreshTTL,
		c.Limit,
		c.AddressRedis,
		c.Exchange,
	)
}
