package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Mail     MailConfig     `mapstructure:"mail"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Dedup    DedupConfig    `mapstructure:"dedup"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Lmstfy   LmstfyConfig   `mapstructure:"lmstfy"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MailConfig 邮件服务配置（SendGrid）
type MailConfig struct {
	APIKey  string        `mapstructure:"api_key"` // 为空时不发送邮件，只记录日志
	From    string        `mapstructure:"from"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AlertsConfig 各字段收件人（逗号分隔）
type AlertsConfig struct {
	QAEmails           string `mapstructure:"qa_emails"`
	ModificationEmails string `mapstructure:"modification_emails"`
	PackingEmails      string `mapstructure:"packing_emails"`
}

// DedupConfig 去重状态配置
type DedupConfig struct {
	Backend   string        `mapstructure:"backend"`    // memory | redis
	TTL       time.Duration `mapstructure:"ttl"`        // 去重 Key 保留时长，0 表示不过期
	KeyFormat string        `mapstructure:"key_format"` // tagged | legacy
}

// MySQLConfig MySQL 配置（为空时不记录通知日志）
type MySQLConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
	ResultChannel string `mapstructure:"result_channel"` // 投递结果发布频道，为空不发布
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
}

// DeliveryConfig 异步投递配置
type DeliveryConfig struct {
	Transport string         `mapstructure:"transport"` // memory | lmstfy
	JobTTL    time.Duration  `mapstructure:"job_ttl"`
	Workers   []WorkerConfig `mapstructure:"workers"`
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// DefaultQueueName 默认投递队列（所有 Worker 共用）
const DefaultQueueName = "order_alert_mail"

// 兼容旧部署的环境变量名
var legacyEnv = map[string]string{
	"mail.api_key":               "SENDGRID_API_KEY",
	"mail.from":                  "ALERT_EMAIL",
	"alerts.qa_emails":           "QA_ALERT_EMAILS",
	"alerts.modification_emails": "MOD_ALERT_EMAILS",
	"alerts.packing_emails":      "PACKING_ALERT_EMAILS",
	"server.port":                "PORT",
}

// Load 加载配置
// configPath 为空时只读取默认值和环境变量；DPNOTIFY_ 前缀的环境变量覆盖文件配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DPNOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "DPNOTIFY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind env %s failed: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	cfg.applyWorkerDefaults()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dpnotify")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 3001)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("mail.api_key", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.timeout", 10*time.Second)

	v.SetDefault("alerts.qa_emails", "")
	v.SetDefault("alerts.modification_emails", "")
	v.SetDefault("alerts.packing_emails", "")

	v.SetDefault("dedup.backend", "memory")
	v.SetDefault("dedup.ttl", 720*time.Hour)
	v.SetDefault("dedup.key_format", "tagged")

	v.SetDefault("mysql.dsn", "")
	v.SetDefault("mysql.auto_migrate", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "dpnotify")
	v.SetDefault("redis.result_channel", "")

	v.SetDefault("lmstfy.host", "")
	v.SetDefault("lmstfy.port", 7777)
	v.SetDefault("lmstfy.namespace", "")
	v.SetDefault("lmstfy.token", "")

	v.SetDefault("delivery.transport", "memory")
	v.SetDefault("delivery.job_ttl", 24*time.Hour)
}

// applyWorkerDefaults 未配置 Worker 时使用单个默认 Worker，并补齐零值
func (c *Config) applyWorkerDefaults() {
	if len(c.Delivery.Workers) == 0 {
		c.Delivery.Workers = []WorkerConfig{{Name: "mail", QueueName: DefaultQueueName}}
	}
	for i := range c.Delivery.Workers {
		w := &c.Delivery.Workers[i]
		if w.QueueName == "" {
			w.QueueName = DefaultQueueName
		}
		if w.Subscriber.Threads == 0 {
			w.Subscriber.Threads = 1
		}
		if w.Subscriber.Timeout == 0 {
			w.Subscriber.Timeout = 3 * time.Second
		}
		if w.Subscriber.TTR == 0 {
			w.Subscriber.TTR = 30 * time.Second
		}
		if w.Subscriber.ErrorBackoff == 0 {
			w.Subscriber.ErrorBackoff = time.Second
		}
		if w.Processor.Threads == 0 {
			w.Processor.Threads = 2
		}
		if w.Processor.BufferSize == 0 {
			w.Processor.BufferSize = 64
		}
		if w.Processor.Timeout == 0 {
			w.Processor.Timeout = c.Mail.Timeout + 5*time.Second
		}
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if c.Mail.APIKey != "" && c.Mail.From == "" {
		return fmt.Errorf("mail.from is required when mail.api_key is set")
	}

	switch c.Dedup.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for dedup.backend=redis")
		}
	default:
		return fmt.Errorf("unknown dedup.backend: %q", c.Dedup.Backend)
	}
	if c.Dedup.TTL < 0 {
		return fmt.Errorf("dedup.ttl must not be negative")
	}
	switch c.Dedup.KeyFormat {
	case "", "tagged", "legacy":
	default:
		return fmt.Errorf("unknown dedup.key_format: %q", c.Dedup.KeyFormat)
	}

	switch c.Delivery.Transport {
	case "memory":
	case "lmstfy":
		if c.Lmstfy.Host == "" {
			return fmt.Errorf("lmstfy.host is required for delivery.transport=lmstfy")
		}
	default:
		return fmt.Errorf("unknown delivery.transport: %q", c.Delivery.Transport)
	}
	if len(c.Delivery.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	// 通知只投递到一个队列，所有 Worker 必须消费同一队列
	queue := c.Delivery.Workers[0].QueueName
	for _, w := range c.Delivery.Workers[1:] {
		if w.QueueName != queue {
			return fmt.Errorf("worker %q consumes %q, all workers must share queue %q", w.Name, w.QueueName, queue)
		}
	}
	if c.Redis.ResultChannel != "" && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis.result_channel is set")
	}
	return nil
}
