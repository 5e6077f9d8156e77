package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv applies TASKMAN_* environment overrides on top of the loaded
// configuration. Unset variables leave the existing values alone.
func (c *Config) FromEnv() {
	if v := strings.TrimSpace(os.Getenv("TASKMAN_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKMAN_DATA_DIR")); v != "" {
		c.Storage.DataDir = v
	}
	if v := getEnvInt("TASKMAN_CACHE_TTL_SECONDS"); v > 0 {
		c.Storage.CacheTTLSeconds = v
	}
	if v := getEnvInt("TASKMAN_IMPORT_MAX_ERRORS"); v > 0 {
		c.Import.MaxErrors = v
	}
	if v := getEnvInt64("TASKMAN_IMPORT_MAX_UPLOAD_BYTES"); v > 0 {
		c.Import.MaxUploadBytes = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKMAN_CORS_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			c.Server.CORSOrigins = origins
		}
	}
}

func getEnvInt(key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return 0
	}
	return v
}

func getEnvInt64(key string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
