package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/esports-arena/storage"
	"github.com/joho/godotenv"
)

// Режимы источника ленты изменений.
const (
	ChangefeedPostgres = "postgres" // триггеры БД + LISTEN
	ChangefeedNATS     = "nats"     // события сервисов, ретрансляция через NATS
	ChangefeedLocal    = "local"    // только внутри процесса
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	ChangefeedMode string
	NATSURL        string
	NATSToken      string
	NATSSubject    string

	CORSAllowedOrigins []string
	RegisterRateLimit  int
	SchedulerInterval  time.Duration
	LogLevel           string

	R2 storage.R2Config
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Отсутствие .env не ошибка.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию из произвольного источника переменных.
func FromEnv(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intVar(getenv, "SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	mode := strings.ToLower(strings.TrimSpace(getenv("CHANGEFEED_MODE")))
	if mode == "" {
		mode = ChangefeedPostgres
	}
	switch mode {
	case ChangefeedPostgres, ChangefeedLocal:
	case ChangefeedNATS:
		if getenv("NATS_URL") == "" {
			return nil, fmt.Errorf("NATS_URL must be set when CHANGEFEED_MODE=nats")
		}
	default:
		return nil, fmt.Errorf("unknown CHANGEFEED_MODE %q", mode)
	}

	rateLimit, err := intVar(getenv, "REGISTER_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	interval := 30 * time.Second
	if v := getenv("SCHEDULER_INTERVAL"); v != "" {
		interval, err = time.ParseDuration(v)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL %q", v)
		}
	}

	origins := []string{"*"}
	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	subject := getenv("NATS_SUBJECT")
	if subject == "" {
		subject = "arena.changes"
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		ChangefeedMode:     mode,
		NATSURL:            getenv("NATS_URL"),
		NATSToken:          getenv("NATS_TOKEN"),
		NATSSubject:        subject,
		CORSAllowedOrigins: origins,
		RegisterRateLimit:  rateLimit,
		SchedulerInterval:  interval,
		LogLevel:           getenv("LOG_LEVEL"),
		R2: storage.R2Config{
			AccountID:       getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
		},
	}

	return cfg, nil
}

func intVar(getenv func(string) string, name string, def int) (int, error) {
	v := getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return n, nil
}
