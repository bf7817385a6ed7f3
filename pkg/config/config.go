package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port string `mapstructure:"port"`

	// HandshakeTimeout close a websocket still unauthenticated after this long
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	PingInterval     time.Duration `mapstructure:"ping_interval"`
	SendBuffer       int           `mapstructure:"send_buffer"`
	// StoreTimeout bound every persistence call
	StoreTimeout    time.Duration `mapstructure:"store_timeout"`
	ProfileCacheTTL time.Duration `mapstructure:"profile_cache_ttl"`
	JWTSecret       string        `mapstructure:"jwt_secret"`

	MongoSQL   DatabaseConfig `mapstructure:"mongo"`
	Redis      RedisConfig    `mapstructure:"redis"`
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Catalog    DatabaseConfig `mapstructure:"catalog"`
	Kafka      KafkaConfig    `mapstructure:"kafka"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryCount    int      `mapstructure:"retry_count"`
	RetryInterval int      `mapstructure:"retry_interval"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// ApplyDefaults fill zero values with the service defaults
func (c *Chat) ApplyDefaults() {
	if c.Port == "" {
		c.Port = "8082"
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = time.Minute
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 5 * time.Second
	}
	if c.ProfileCacheTTL <= 0 {
		c.ProfileCacheTTL = 10 * time.Minute
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "chat.message.created"
	}
}
