package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-fund-ledger/pkg/logger"
	"github.com/JoeShih716/go-fund-ledger/pkg/mysql"
)

// EnvPrefix 環境變數前綴
const EnvPrefix = "FUNDLEDGER_"

const (
	EngineMutex = "mutex"
	EngineLMAX  = "lmax"

	StorageMemory = "memory"
	StorageWAL    = "wal"
	StorageMySQL  = "mysql"

	EventsNone  = "none"
	EventsKafka = "kafka"
	EventsAMQP  = "amqp"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Storage StorageConfig `yaml:"storage"`
	MySQL   mysql.Config  `yaml:"mysql"`
	Events  EventsConfig  `yaml:"events"`
	Log     logger.Config `yaml:"log"`
}

type ServerConfig struct {
	GRPCAddr        string        `yaml:"grpc_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LedgerConfig struct {
	// Engine mutex | lmax
	Engine    string `yaml:"engine"`
	QueueSize int    `yaml:"queue_size"`
	// Identity 啟動時載入的使用者，空字串為 guest
	Identity string `yaml:"identity"`
}

type StorageConfig struct {
	// Driver memory | wal | mysql
	Driver string    `yaml:"driver"`
	WAL    WALConfig `yaml:"wal"`
}

type WALConfig struct {
	Path         string `yaml:"path"`
	CompactEvery int    `yaml:"compact_every"`
}

type EventsConfig struct {
	// Driver none | kafka | amqp
	Driver string `yaml:"driver"`
	// Buffer 非同步發布佇列長度
	Buffer int         `yaml:"buffer"`
	Kafka  KafkaConfig `yaml:"kafka"`
	AMQP   AMQPConfig  `yaml:"amqp"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

// Load 讀取 YAML 設定檔，套用 FUNDLEDGER_* 環境變數後補上預設值
//
// 參數:
//
//	path: 設定檔路徑，空字串或檔案不存在時只使用環境變數與預設值
//
// 回傳:
//
//	Config: 設定
//	error: 檔案無法讀取或 YAML 格式錯誤
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg.WithDefaults(), nil
}

// applyEnv 環境變數覆寫設定檔
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("GRPC_ADDR", &c.Server.GRPCAddr)
	str("LEDGER_ENGINE", &c.Ledger.Engine)
	num("LEDGER_QUEUE_SIZE", &c.Ledger.QueueSize)
	str("IDENTITY", &c.Ledger.Identity)

	str("STORAGE", &c.Storage.Driver)
	str("WAL_PATH", &c.Storage.WAL.Path)
	num("WAL_COMPACT_EVERY", &c.Storage.WAL.CompactEvery)

	str("MYSQL_HOST", &c.MySQL.Host)
	num("MYSQL_PORT", &c.MySQL.Port)
	str("MYSQL_USER", &c.MySQL.User)
	str("MYSQL_PASSWORD", &c.MySQL.Password)
	str("MYSQL_DBNAME", &c.MySQL.DBName)

	str("EVENTS", &c.Events.Driver)
	num("EVENTS_BUFFER", &c.Events.Buffer)
	if v, ok := lookup(EnvPrefix + "KAFKA_BROKERS"); ok && v != "" {
		c.Events.Kafka.Brokers = splitList(v)
	}
	str("KAFKA_TOPIC", &c.Events.Kafka.Topic)
	str("AMQP_URL", &c.Events.AMQP.URL)
	str("AMQP_EXCHANGE", &c.Events.AMQP.Exchange)
	str("AMQP_QUEUE", &c.Events.AMQP.Queue)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// WithDefaults 回傳補上預設值的設定
func (c Config) WithDefaults() Config {
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = ":50051"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Ledger.Engine == "" {
		c.Ledger.Engine = EngineMutex
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageWAL
	}
	if c.Storage.WAL.Path == "" {
		c.Storage.WAL.Path = "data/snapshots.wal"
	}
	if c.Events.Driver == "" {
		c.Events.Driver = EventsNone
	}
	if c.Events.AMQP.Exchange == "" {
		c.Events.AMQP.Exchange = "fund_ledger"
	}
	if c.Storage.Driver == StorageMySQL {
		c.MySQL = c.MySQL.WithDefaults()
	}
	return c
}

// Validate 檢查設定，一次回報所有問題
func (c Config) Validate() error {
	var problems []string

	if c.Server.GRPCAddr == "" {
		problems = append(problems, "server.grpc_addr cannot be empty")
	}
	if !slices.Contains([]string{EngineMutex, EngineLMAX}, c.Ledger.Engine) {
		problems = append(problems, fmt.Sprintf("invalid ledger engine '%s': must be one of [%s %s]", c.Ledger.Engine, EngineMutex, EngineLMAX))
	}
	if c.Ledger.QueueSize < 0 {
		problems = append(problems, fmt.Sprintf("invalid ledger queue size %d: must not be negative", c.Ledger.QueueSize))
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageWAL:
		if c.Storage.WAL.Path == "" {
			problems = append(problems, "storage.wal.path cannot be empty when using wal storage")
		}
		if c.Storage.WAL.CompactEvery < 0 {
			problems = append(problems, "storage.wal.compact_every must not be negative")
		}
	case StorageMySQL:
		if c.MySQL.DBName == "" {
			problems = append(problems, "mysql.dbname is required when using mysql storage")
		}
		if c.MySQL.User == "" {
			problems = append(problems, "mysql.user is required when using mysql storage")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid storage driver '%s': must be one of [%s %s %s]", c.Storage.Driver, StorageMemory, StorageWAL, StorageMySQL))
	}

	switch c.Events.Driver {
	case EventsNone:
	case EventsKafka:
		if len(c.Events.Kafka.Brokers) == 0 {
			problems = append(problems, "events.kafka.brokers is required when using kafka events")
		}
	case EventsAMQP:
		if u, err := url.Parse(c.Events.AMQP.URL); err != nil || c.Events.AMQP.URL == "" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s'", c.Events.AMQP.URL))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid events driver '%s': must be one of [%s %s %s]", c.Events.Driver, EventsNone, EventsKafka, EventsAMQP))
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if f := strings.ToLower(c.Log.Format); f != "" && f != "text" && f != "json" {
		problems = append(problems, fmt.Sprintf("unknown log format '%s'", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
