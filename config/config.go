// Package config loads the VM's resource-limit and diagnostic settings
// from a YAML document, per SPEC_FULL.md §A.3.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables spec.md leaves as fixed constants (16384-slot
// stack, 64-entry frame array, mark-and-sweep growth factor) but which this
// implementation exposes as overridable resource limits, the way a host
// embedding the engine would want to cap a runaway script.
type Config struct {
	StackSize            int     `yaml:"stackSize"`
	FrameCount            int     `yaml:"frameCount"`
	GCHeapGrowFactor     float64 `yaml:"gcHeapGrowFactor"`
	GCInitialThreshold   int     `yaml:"gcInitialThreshold"`
	DisassembleOnCompile bool    `yaml:"disassembleOnCompile"`
}

// Default returns the configuration matching spec.md's fixed constants:
// a 16,384-slot value stack, a 64-entry frame array, GC threshold doubling
// (growth factor 2) starting at 1 << 20 (1,048,576) tracked heap objects;
// the collector counts objects, not bytes.
func Default() Config {
	return Config{
		StackSize:           16384,
		FrameCount:           64,
		GCHeapGrowFactor:     2,
		GCInitialThreshold:   1 << 20,
		DisassembleOnCompile: false,
	}
}

// Load reads a YAML config file at path, starting from Default() so that
// any field the file omits keeps its spec-mandated value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
