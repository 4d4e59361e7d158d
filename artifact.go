// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
)

// Artifact represents an artifact generated for a task.
type Artifact struct {
	// ArtifactID is unique within a task.
	ArtifactID string `json:"artifactId"`
	// Name is an optional human readable name.
	Name string `json:"name,omitzero"`
	// Description is an optional human readable description.
	Description string `json:"description,omitzero"`
	// Parts is the artifact content. It holds at least one part.
	Parts []Part `json:"parts"`
	// Extensions lists the URIs of extensions present in this artifact.
	Extensions []string `json:"extensions,omitzero"`
	// Metadata holds extension metadata.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// NewArtifact creates an artifact with a fresh identifier.
func NewArtifact(parts []Part, name, description string) *Artifact {
	return &Artifact{
		ArtifactID:  uuid.NewString(),
		Name:        name,
		Description: description,
		Parts:       parts,
	}
}

// NewTextArtifact creates an artifact holding a single [TextPart].
func NewTextArtifact(name, text, description string) *Artifact {
	return NewArtifact([]Part{NewTextPart(text)}, name, description)
}

// NewDataArtifact creates an artifact holding a single [DataPart].
func NewDataArtifact(name string, data map[string]any, description string) *Artifact {
	return NewArtifact([]Part{NewDataPart(data)}, name, description)
}

// Clone returns a deep copy of a.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	return &Artifact{
		ArtifactID:  a.ArtifactID,
		Name:        a.Name,
		Description: a.Description,
		Parts:       cloneParts(a.Parts),
		Extensions:  cloneStrings(a.Extensions),
		Metadata:    cloneMap(a.Metadata),
	}
}

// Validate reports whether a satisfies the structural rules enforced by the parser.
func (a *Artifact) Validate() error {
	if a.ArtifactID == "" {
		return schemaErrorf("artifactId", "must not be empty")
	}
	return validateParts(a.Parts, "parts")
}

// UnmarshalJSON implements [json.Unmarshaler].
func (a *Artifact) UnmarshalJSON(data []byte) error {
	art, err := unmarshalWith(data, defaultParser.artifact)
	if err != nil {
		return err
	}
	*a = *art
	return nil
}

var _ json.Unmarshaler = (*Artifact)(nil)

// ParseArtifact validates an untyped payload as an artifact with the default parser.
func ParseArtifact(v any) (*Artifact, error) {
	return defaultParser.ParseArtifact(v)
}

// ParseArtifact validates an untyped payload as an artifact.
func (p *Parser) ParseArtifact(v any) (*Artifact, error) {
	return p.artifact(v, "")
}

func (p *Parser) artifact(v any, path fieldPath) (*Artifact, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}

	art := &Artifact{}
	if art.ArtifactID, err = o.nonEmptyString("artifactId"); err != nil {
		return nil, err
	}
	if art.Parts, err = p.parts(o); err != nil {
		return nil, err
	}
	if art.Name, err = o.optionalString("name"); err != nil {
		return nil, err
	}
	if art.Description, err = o.optionalString("description"); err != nil {
		return nil, err
	}
	// "extension" is the singular spelling used by early drafts.
	name := "extensions"
	if !o.has(name) && o.has("extension") {
		name = "extension"
	}
	if art.Extensions, err = o.optionalStrings(name); err != nil {
		return nil, err
	}
	if art.Metadata, err = o.optionalMap("metadata"); err != nil {
		return nil, err
	}
	return art, nil
}
