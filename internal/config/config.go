package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                  string `env:"DSN,required"`
		ConnectTimeout       int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout         int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout   int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns         int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns         int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime          int    `env:"MAX_IDLE_TIME" envDefault:"60"`
		ReservationIsolation string `env:"RESERVATION_ISOLATION" envDefault:"read_committed"` // read_committed, repeatable_read 或 serializable
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Secret string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		MailQueue      string `env:"MAIL_QUEUE" envDefault:"email_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Cache struct {
		TTL        int `env:"TTL" envDefault:"1800"` // 30 分钟
		MaxEntries int `env:"MAX_ENTRIES" envDefault:"20"`
	} `envPrefix:"CACHE_"`
	Booking struct {
		DefaultTimezone string `env:"DEFAULT_TIMEZONE" envDefault:"UTC"`
	} `envPrefix:"BOOKING_"`
	// 只有部署在可信的反向代理之后才能开启 TrustProxy，否则客户端可以伪造 X-Forwarded-For
	RateLimit struct {
		Limit      int  `env:"LIMIT" envDefault:"10"`
		Window     int  `env:"WINDOW" envDefault:"60"`
		FailOpen   bool `env:"FAIL_OPEN" envDefault:"true"`
		TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`
	} `envPrefix:"RATE_LIMIT_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
