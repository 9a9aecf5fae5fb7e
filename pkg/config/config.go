package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cyphal-go/transport-core/pkg/cyphal"
)

// Config bootstraps a cmd/ binary's engine.
type Config struct {
	// LocalNode is this participant's node id. 0xFFFF (or omitted)
	// means anonymous.
	LocalNode uint16 `yaml:"local_node"`

	// MediaCount is how many redundant media the host expects to
	// configure. Purely advisory to cmd/ binaries; the engine itself
	// only cares about the slice it's actually given.
	MediaCount int `yaml:"media_count"`

	// TXQueueCapacity bounds each media's outgoing frame queue.
	TXQueueCapacity int `yaml:"tx_queue_capacity"`

	// MaxSubscriptions bounds the subscription tree's pool.
	MaxSubscriptions int `yaml:"max_subscriptions"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// TraceFile, if set, captures a CBOR event trace to this path.
	TraceFile string `yaml:"trace_file"`
}

// Default returns a Config with reasonable defaults for a single
// anonymous-node loopback demo.
func Default() Config {
	return Config{
		LocalNode:        uint16(cyphal.UnsetNodeID),
		MediaCount:       1,
		TXQueueCapacity:  64,
		MaxSubscriptions: 32,
		LogLevel:         "info",
	}
}

// Load reads and parses a YAML config file at path, filling in
// defaults for anything left unset.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}
