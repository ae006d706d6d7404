package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	MappingFilePath       string
	MetafieldsMappingPath string

	ScrapeAPIBaseURL    string
	ScrapeAPIToken      string
	ScrapeActorID       string
	ScrapeRateLimitRPS  int
	ScrapeTimeoutMs     int
	ScrapePollIntervalS int
	ScrapeMaxPolls      int

	WatchIntervalSec int
	WatchAutoExport  bool
	WatchFormat      string
	WatchFinalShape  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		MappingFilePath:       getEnv("MAPPING_FILE", filepath.Join(cwd, "config", "mapping.xlsx")),
		MetafieldsMappingPath: getEnv("METAFIELDS_MAPPING_FILE", filepath.Join(cwd, "config", "metafields-mapping.xlsx")),

		ScrapeAPIBaseURL:    getEnv("SCRAPE_API_BASE_URL", "https://api.apify.com/v2"),
		ScrapeAPIToken:      getEnv("SCRAPE_API_TOKEN", ""),
		ScrapeActorID:       getEnv("SCRAPE_ACTOR_ID", ""),
		ScrapeRateLimitRPS:  getEnvInt("SCRAPE_RATE_LIMIT_RPS", 5),
		ScrapeTimeoutMs:     getEnvInt("SCRAPE_TIMEOUT_MS", 30000),
		ScrapePollIntervalS: getEnvInt("SCRAPE_POLL_INTERVAL_SEC", 10),
		ScrapeMaxPolls:      getEnvInt("SCRAPE_MAX_POLLS", 180),

		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 3600),
		WatchAutoExport:  getEnvBool("WATCH_AUTO_EXPORT", true),
		WatchFormat:      getEnv("WATCH_FORMAT", "xlsx"),
		WatchFinalShape:  getEnvBool("WATCH_FINAL_SHAPE", false),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
