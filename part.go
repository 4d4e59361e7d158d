// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"github.com/go-json-experiment/json"
)

// Kind is the "kind" discriminator carried by every tagged object of the protocol.
type Kind string

// Kind values.
const (
	KindText           Kind = "text"
	KindFile           Kind = "file"
	KindData           Kind = "data"
	KindMessage        Kind = "message"
	KindTask           Kind = "task"
	KindStatusUpdate   Kind = "status-update"
	KindArtifactUpdate Kind = "artifact-update"
)

// Part is a fragment of message or artifact content.
//
// The implementations are [*TextPart], [*FilePart] and [*DataPart].
type Part interface {
	// GetKind returns the discriminator of the part.
	GetKind() Kind
	// GetMetadata returns the optional metadata of the part.
	GetMetadata() map[string]any

	isPart()
}

// TextPart represents a text segment within parts.
type TextPart struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// FilePart represents a file segment within parts.
type FilePart struct {
	File     FileContent    `json:"file"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// DataPart represents a structured data segment within parts.
type DataPart struct {
	Data     map[string]any `json:"data"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

var (
	_ Part = (*TextPart)(nil)
	_ Part = (*FilePart)(nil)
	_ Part = (*DataPart)(nil)
)

func (*TextPart) GetKind() Kind { return KindText }
func (*FilePart) GetKind() Kind { return KindFile }
func (*DataPart) GetKind() Kind { return KindData }

func (p *TextPart) GetMetadata() map[string]any { return p.Metadata }
func (p *FilePart) GetMetadata() map[string]any { return p.Metadata }
func (p *DataPart) GetMetadata() map[string]any { return p.Metadata }

func (*TextPart) isPart() {}
func (*FilePart) isPart() {}
func (*DataPart) isPart() {}

// FileContent is the payload of a [FilePart]: either inline bytes or a URI, never both.
//
// The implementations are [*FileWithBytes] and [*FileWithURI].
type FileContent interface {
	// GetName returns the optional file name.
	GetName() string
	// GetMIMEType returns the optional media type.
	GetMIMEType() string

	isFileContent()
}

// FileWithBytes carries base64 encoded file content inline.
type FileWithBytes struct {
	Bytes    string `json:"bytes"`
	Name     string `json:"name,omitzero"`
	MIMEType string `json:"mimeType,omitzero"`
}

// FileWithURI points at file content by URI.
type FileWithURI struct {
	URI      string `json:"uri"`
	Name     string `json:"name,omitzero"`
	MIMEType string `json:"mimeType,omitzero"`
}

var (
	_ FileContent = (*FileWithBytes)(nil)
	_ FileContent = (*FileWithURI)(nil)
)

func (f *FileWithBytes) GetName() string     { return f.Name }
func (f *FileWithBytes) GetMIMEType() string { return f.MIMEType }
func (*FileWithBytes) isFileContent()        {}

func (f *FileWithURI) GetName() string     { return f.Name }
func (f *FileWithURI) GetMIMEType() string { return f.MIMEType }
func (*FileWithURI) isFileContent()        {}

// NewTextPart returns a text part.
func NewTextPart(text string) *TextPart {
	return &TextPart{Text: text}
}

// NewDataPart returns a data part.
func NewDataPart(data map[string]any) *DataPart {
	return &DataPart{Data: data}
}

// NewFilePartWithBytes returns a file part carrying inline content.
func NewFilePartWithBytes(name, mimeType, b64 string) *FilePart {
	return &FilePart{File: &FileWithBytes{Bytes: b64, Name: name, MIMEType: mimeType}}
}

// NewFilePartWithURI returns a file part referencing content by URI.
func NewFilePartWithURI(name, mimeType, uri string) *FilePart {
	return &FilePart{File: &FileWithURI{URI: uri, Name: name, MIMEType: mimeType}}
}

// MarshalJSON implements [json.Marshaler].
func (p *TextPart) MarshalJSON() ([]byte, error) {
	type alias TextPart
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindText, (*alias)(p)})
}

// MarshalJSON implements [json.Marshaler].
func (p *FilePart) MarshalJSON() ([]byte, error) {
	if p.File == nil {
		return nil, schemaErrorf("file", "file part has no content")
	}
	type alias FilePart
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindFile, (*alias)(p)})
}

// MarshalJSON implements [json.Marshaler].
func (p *DataPart) MarshalJSON() ([]byte, error) {
	type alias DataPart
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindData, (*alias)(p)})
}

// UnmarshalJSON implements [json.Unmarshaler].
func (p *TextPart) UnmarshalJSON(data []byte) error {
	part, err := unmarshalWith(data, defaultParser.partOf(KindText))
	if err != nil {
		return err
	}
	*p = *part.(*TextPart)
	return nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (p *FilePart) UnmarshalJSON(data []byte) error {
	part, err := unmarshalWith(data, defaultParser.partOf(KindFile))
	if err != nil {
		return err
	}
	*p = *part.(*FilePart)
	return nil
}

// UnmarshalJSON implements [json.Unmarshaler].
func (p *DataPart) UnmarshalJSON(data []byte) error {
	part, err := unmarshalWith(data, defaultParser.partOf(KindData))
	if err != nil {
		return err
	}
	*p = *part.(*DataPart)
	return nil
}

// UnmarshalPart decodes a JSON content part with the default parser.
func UnmarshalPart(data []byte) (Part, error) {
	return unmarshalWith(data, defaultParser.part)
}

// ParsePart validates an untyped payload as a content part with the default parser.
func ParsePart(v any) (Part, error) {
	return defaultParser.ParsePart(v)
}

// ParsePart validates an untyped payload as a content part.
func (p *Parser) ParsePart(v any) (Part, error) {
	return p.part(v, "")
}

func (p *Parser) part(v any, path fieldPath) (Part, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	return selectVariant(p, o,
		variant[Part]{KindText, func(o object) (Part, error) { return p.textPart(o) }},
		variant[Part]{KindFile, func(o object) (Part, error) { return p.filePart(o) }},
		variant[Part]{KindData, func(o object) (Part, error) { return p.dataPart(o) }},
	)
}

// partOf parses a part that must resolve to the given variant.
func (p *Parser) partOf(want Kind) func(v any, path fieldPath) (Part, error) {
	return func(v any, path fieldPath) (Part, error) {
		part, err := p.part(v, path)
		if err != nil {
			return nil, err
		}
		if part.GetKind() != want {
			return nil, schemaErrorf(path.field("kind"), "got %q, want %q", part.GetKind(), want)
		}
		return part, nil
	}
}

func (p *Parser) parts(o object) ([]Part, error) {
	arr, _, err := o.array("parts", true)
	if err != nil {
		return nil, err
	}
	if len(arr) == 0 {
		return nil, schemaErrorf(o.path.field("parts"), "must contain at least one part")
	}
	parts := make([]Part, 0, len(arr))
	for i, item := range arr {
		part, err := p.part(item, o.path.field("parts").index(i))
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}

func (p *Parser) textPart(o object) (*TextPart, error) {
	text, err := o.requiredString("text")
	if err != nil {
		return nil, err
	}
	md, err := o.optionalMap("metadata")
	if err != nil {
		return nil, err
	}
	return &TextPart{Text: text, Metadata: md}, nil
}

func (p *Parser) filePart(o object) (*FilePart, error) {
	f, err := o.child("file")
	if err != nil {
		return nil, err
	}
	file, err := fileContent(f)
	if err != nil {
		return nil, err
	}
	md, err := o.optionalMap("metadata")
	if err != nil {
		return nil, err
	}
	return &FilePart{File: file, Metadata: md}, nil
}

func fileContent(o object) (FileContent, error) {
	hasBytes, hasURI := o.has("bytes"), o.has("uri")
	switch {
	case hasBytes && hasURI:
		return nil, newError(InvalidPart, o.path, "file carries both bytes and uri")
	case !hasBytes && !hasURI:
		return nil, newError(InvalidPart, o.path, "file carries neither bytes nor uri")
	}

	name, err := o.optionalString("name")
	if err != nil {
		return nil, err
	}
	mimeType, err := o.optionalString("mimeType")
	if err != nil {
		return nil, err
	}

	if hasBytes {
		b, err := o.requiredString("bytes")
		if err != nil {
			return nil, err
		}
		return &FileWithBytes{Bytes: b, Name: name, MIMEType: mimeType}, nil
	}
	uri, err := o.requiredString("uri")
	if err != nil {
		return nil, err
	}
	return &FileWithURI{URI: uri, Name: name, MIMEType: mimeType}, nil
}

func (p *Parser) dataPart(o object) (*DataPart, error) {
	if !o.has("data") {
		return nil, schemaErrorf(o.path.field("data"), "required")
	}
	data, err := o.optionalMap("data")
	if err != nil {
		return nil, err
	}
	md, err := o.optionalMap("metadata")
	if err != nil {
		return nil, err
	}
	return &DataPart{Data: data, Metadata: md}, nil
}

// clonePart returns a deep copy of part.
func clonePart(part Part) Part {
	switch p := part.(type) {
	case *TextPart:
		return &TextPart{Text: p.Text, Metadata: cloneMap(p.Metadata)}
	case *FilePart:
		var file FileContent
		switch f := p.File.(type) {
		case *FileWithBytes:
			cp := *f
			file = &cp
		case *FileWithURI:
			cp := *f
			file = &cp
		}
		return &FilePart{File: file, Metadata: cloneMap(p.Metadata)}
	case *DataPart:
		return &DataPart{Data: cloneMap(p.Data), Metadata: cloneMap(p.Metadata)}
	default:
		return part
	}
}

func cloneParts(parts []Part) []Part {
	if parts == nil {
		return nil
	}
	out := make([]Part, len(parts))
	for i, part := range parts {
		out[i] = clonePart(part)
	}
	return out
}

// cloneMap deep copies a decoded JSON object.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}
