package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/deeptime/pkg/errors"
)

// Environment variables that override file settings.
const (
	EnvDataset        = "DEEPTIME_DATASET"
	EnvAddr           = "DEEPTIME_ADDR"
	EnvSessionBackend = "DEEPTIME_SESSION_BACKEND"
	EnvRedisURL       = "DEEPTIME_REDIS_URL"
	EnvMongoURI       = "DEEPTIME_MONGO_URI"
	EnvMongoDatabase  = "DEEPTIME_MONGO_DATABASE"
	EnvDebounce       = "DEEPTIME_DEBOUNCE"
	EnvCacheDir       = "DEEPTIME_CACHE_DIR"
	EnvNoCache        = "DEEPTIME_NO_CACHE"
)

// LoadDotenv loads KEY=VALUE pairs from the given files (".env" when none
// are named) into the process environment. Variables that are already set
// win. It reports whether any file was read.
func LoadDotenv(files ...string) bool {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var found []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			found = append(found, f)
		}
	}
	if len(found) == 0 {
		return false
	}
	return godotenv.Load(found...) == nil
}

// ApplyEnv overlays DEEPTIME_* variables read through getenv and
// revalidates the result.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str(EnvDataset, &c.Dataset)
	str(EnvAddr, &c.Server.Addr)
	str(EnvSessionBackend, &c.Session.Backend)
	str(EnvRedisURL, &c.Session.RedisURL)
	str(EnvMongoURI, &c.Session.MongoURI)
	str(EnvMongoDatabase, &c.Session.MongoDatabase)
	str(EnvCacheDir, &c.Cache.Dir)

	if v := getenv(EnvDebounce); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvDebounce)
		}
		c.Session.Debounce = d
	}
	if v := getenv(EnvNoCache); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvNoCache)
		}
		c.Cache.Disabled = b
	}
	return c.Validate()
}
