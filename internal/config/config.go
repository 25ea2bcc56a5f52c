package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	applog "stockroom/internal/log"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	LogLevel string
	SeedDemo bool

	// SalesBatchMode is used when a record request does not name one:
	// "best_effort" or "atomic".
	SalesBatchMode string

	KafkaBrokers    []string
	KafkaAuditTopic string

	BodyLimit       int
	RateLimitPerMin int
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func Load() Config {
	mode := strings.ToLower(getenv("SALES_BATCH_MODE", "best_effort"))
	if mode != "atomic" {
		mode = "best_effort"
	}
	var brokers []string
	for _, b := range strings.Split(getenv("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	cfg := Config{
		Port:            getenv("PORT", "8080"),
		DBDSN:           getenv("DB_DSN", "stockroom.db"), // sqlite file in working dir
		LogFile:         getenv("LOG_FILE", "./stockroom.log"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		SeedDemo:        boolenv("SEED_DEMO", true),
		SalesBatchMode:  mode,
		KafkaBrokers:    brokers,
		KafkaAuditTopic: getenv("KAFKA_AUDIT_TOPIC", "stockroom.audit"),
		BodyLimit:       atoienv("BODY_LIMIT", 1<<20),
		RateLimitPerMin: atoienv("RATE_LIMIT_PER_MIN", 120),
		LoginRateLimit:  atoienv("LOGIN_RATE_LIMIT", 5),
		LoginRateWindow: 10 * time.Minute,
	}
	return cfg
}

// LogEffective records the loaded values; call it once the logger exists.
func (c Config) LogEffective() {
	applog.L().Info("config",
		zap.String("port", c.Port),
		zap.String("db_dsn", c.DBDSN),
		zap.String("log_file", c.LogFile),
		zap.Bool("seed_demo", c.SeedDemo),
		zap.String("sales_batch_mode", c.SalesBatchMode),
		zap.Strings("kafka_brokers", c.KafkaBrokers),
		zap.String("kafka_audit_topic", c.KafkaAuditTopic),
	)
}
