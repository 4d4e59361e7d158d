// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package agentcard loads agent cards from JSON or YAML files.
package agentcard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"

	a2a "github.com/go-a2a/a2a-wire"
)

// Format is the encoding of an agent card document.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates the agent card at path.
func Load(path string) (*a2a.AgentCard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading agent card: %w", err)
	}

	card, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return card, nil
}

// Parse decodes and validates an agent card.
//
// YAML documents use the same field names as the JSON form. A card without
// preferred transport defaults to JSON-RPC.
func Parse(data []byte, format Format) (*a2a.AgentCard, error) {
	switch format {
	case FormatJSON:
	case FormatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing agent card: %w", err)
		}
		if doc == nil {
			return nil, fmt.Errorf("parsing agent card: empty document")
		}
		var err error
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("converting agent card: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported agent card format %q", format)
	}

	card := &a2a.AgentCard{}
	if err := json.Unmarshal(data, card); err != nil {
		return nil, fmt.Errorf("decoding agent card: %w", err)
	}
	if card.PreferredTransport == "" {
		card.PreferredTransport = a2a.TransportJSONRPC
	}
	if err := card.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent card: %w", err)
	}

	return card, nil
}
