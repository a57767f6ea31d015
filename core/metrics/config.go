package metrics

import "github.com/kilianp07/robsolve/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// ListenAddr exposes /metrics when non-empty, e.g. ":9102".
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}
