// Copyright (C) 2025 Lattice Systems (eng@latticehq.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

type LatticeConfig struct {
	// History bounds the undo stack of every session.
	History HistoryConfig `yaml:"history"`

	// Telemetry toggles OpenTelemetry instrumentation.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// DatePatterns: ordered Go time layouts for date parsing. Empty uses
	// the built-in list.
	DatePatterns []string `yaml:"date_patterns"`

	// Assistant: settings for the optional OpenAI-backed assistant. The
	// API key is never stored here; it comes from OPENAI_API_KEY.
	Assistant AssistantConfig `yaml:"assistant"`
}

type HistoryConfig struct {
	MaxDepth int `yaml:"max_depth"` // e.g. 50
}

type TelemetryConfig struct {
	Metrics bool `yaml:"metrics"`
	Tracing bool `yaml:"tracing"`
}

type AssistantConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model,omitempty"` // e.g. gpt-4o-mini
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() LatticeConfig {
	return LatticeConfig{
		History: HistoryConfig{MaxDepth: 50},
	}
}
