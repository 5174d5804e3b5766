package chromez

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// Environment variables that override Config fields.
const (
	EnvOutput        = "CHROMEZ_OUTPUT"
	EnvProcessID     = "CHROMEZ_PID"
	EnvCategory      = "CHROMEZ_CATEGORY"
	EnvAsyncCategory = "CHROMEZ_ASYNC_CATEGORY"
	EnvBufferSize    = "CHROMEZ_BUFFER_SIZE"
)

// Config holds session settings loadable from a TOML file.
//
//	output = "trace.json"
//	category = "app"
//	async_category = "async"
//	buffer_size = 65536
type Config struct {
	Output        string `toml:"output"`         // trace file path
	Category      string `toml:"category"`       // default event category
	AsyncCategory string `toml:"async_category"` // category for async events without one
	ProcessID     uint64 `toml:"pid"`            // 0 = os.Getpid()
	BufferSize    int    `toml:"buffer_size"`    // output write buffer
	QueueCapacity int    `toml:"queue_capacity"` // initial event queue capacity
}

// DefaultConfig returns the configuration New uses.
func DefaultConfig() Config {
	return Config{
		Output:        DefaultOutput,
		AsyncCategory: DefaultAsyncCategory,
		BufferSize:    DefaultBufferSize,
		QueueCapacity: DefaultQueueCapacity,
	}
}

// LoadConfig reads a TOML file over the defaults. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load trace config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown trace config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CHROMEZ_* environment variables.
func (c Config) ApplyEnv() (Config, error) {
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
	if v := os.Getenv(EnvCategory); v != "" {
		c.Category = v
	}
	if v := os.Getenv(EnvAsyncCategory); v != "" {
		c.AsyncCategory = v
	}
	if v := os.Getenv(EnvProcessID); v != "" {
		pid, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c, fmt.Errorf("invalid %s: %q: %w", EnvProcessID, v, err)
		}
		c.ProcessID = pid
	}
	if v := os.Getenv(EnvBufferSize); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return c, fmt.Errorf("invalid %s: %q (expected a positive integer)", EnvBufferSize, v)
		}
		c.BufferSize = size
	}
	return c, nil
}

// Builder converts the configuration into a Builder. log may be nil.
func (c Config) Builder(log *zap.Logger) *Builder {
	return New().
		WithOutput(c.Output).
		WithCategory(c.Category).
		WithAsyncCategory(c.AsyncCategory).
		WithProcessID(c.ProcessID).
		WithBufferSize(c.BufferSize).
		WithQueueCapacity(c.QueueCapacity).
		WithLogger(log)
}
