// Package config loads upload manager configuration from the environment.
//
// A .env file in the working directory is honored when present, matching how
// the surrounding services source their deployment settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/fenice-io/upload/uploadtypes"
)

// Environment variable names recognized by Load.
const (
	EnvMaxSizeBytes     = "UPLOAD_MAX_SIZE_BYTES"
	EnvChunkSizeBytes   = "UPLOAD_CHUNK_SIZE_BYTES"
	EnvSessionTimeoutMs = "UPLOAD_SESSION_TIMEOUT_MS"
	EnvMaxConcurrent    = "UPLOAD_MAX_CONCURRENT"
)

// Defaults applied when a variable is unset.
const (
	DefaultMaxSizeBytes   = int64(100 * 1024 * 1024) // 100MB
	DefaultChunkSizeBytes = int64(5 * 1024 * 1024)   // 5MB
	DefaultSessionTimeout = time.Hour
	DefaultMaxConcurrent  = 64
)

// Load reads the upload configuration from the environment, applying defaults
// for unset variables. Invalid values are accumulated and reported together.
func Load() (uploadtypes.Config, error) {
	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	l := &loader{}
	cfg := uploadtypes.Config{
		MaxSizeBytes:   l.int64OrDefault(EnvMaxSizeBytes, DefaultMaxSizeBytes),
		ChunkSizeBytes: l.int64OrDefault(EnvChunkSizeBytes, DefaultChunkSizeBytes),
		SessionTimeout: l.millisOrDefault(EnvSessionTimeoutMs, DefaultSessionTimeout),
		MaxConcurrent:  l.intOrDefault(EnvMaxConcurrent, DefaultMaxConcurrent),
	}
	if err := l.Error(); err != nil {
		return uploadtypes.Config{}, err
	}
	return cfg, nil
}

// loader accumulates parse errors across lookups so a misconfigured
// deployment reports every problem at once.
type loader struct {
	errs []error
}

func (l *loader) Error() error {
	if len(l.errs) > 0 {
		return errors.Join(l.errs...)
	}
	return nil
}

func (l *loader) int64OrDefault(key string, defaultValue int64) int64 {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		l.errs = append(l.errs, errors.New("invalid int for "+key+": "+value))
		return defaultValue
	}
	return parsed
}

func (l *loader) intOrDefault(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		l.errs = append(l.errs, errors.New("invalid int for "+key+": "+value))
		return defaultValue
	}
	return parsed
}

func (l *loader) millisOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		l.errs = append(l.errs, errors.New("invalid int for "+key+": "+value))
		return defaultValue
	}
	return time.Duration(parsed) * time.Millisecond
}
