package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is everything the process reads from the environment. The
// billing knobs (daily cost, trial length, admin set) are injected into
// the billing service from here; nothing in the core reads env vars.
type Config struct {
	BotToken string

	PostgresDSN string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	DailyCost         int64
	TrialPeriod       time.Duration
	AdminIDs          []int64
	SettlementHourUTC int

	WarehouseMaxAgeHours int
	ChatStateTTLHours    int
}

func Load() *Config {
	return &Config{
		BotToken:             strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		PostgresDSN:          strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisHost:            envString("REDIS_HOST", "localhost"),
		RedisPort:            envString("REDIS_PORT", "6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              envInt("REDIS_DB", 0),
		DailyCost:            int64(envInt("DAILY_COST", 0)),
		TrialPeriod:          time.Duration(envInt("TRIAL_HOURS", 24)) * time.Hour,
		AdminIDs:             ParseAdminIDs(os.Getenv("ADMIN_IDS")),
		SettlementHourUTC:    envInt("SETTLEMENT_HOUR_UTC", 3),
		WarehouseMaxAgeHours: envInt("WAREHOUSE_CACHE_HOURS", 12),
		ChatStateTTLHours:    envInt("CHAT_STATE_TTL_HOURS", 24),
	}
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func envString(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s value %q, using default %d", name, v, def)
		return def
	}
	return n
}

// ParseAdminIDs reads a comma-separated list of Telegram user ids.
func ParseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Invalid admin id %q, skipping", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// LoadEnvFile loads KEY=VALUE pairs from a file into the environment.
// Missing files are not an error; existing env vars win.
func LoadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		v = strings.TrimSpace(v)
		if len(v) >= 2 {
			if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
				v = v[1 : len(v)-1]
			}
		}
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		_ = os.Setenv(k, v)
	}
	return nil
}
