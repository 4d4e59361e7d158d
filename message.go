// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
)

// Role represents the role of a message sender in the A2A protocol.
type Role string

// Role constants for message senders.
const (
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

// Message represents a single message exchanged between user and agent.
type Message struct {
	// Role identifies the sender.
	Role Role `json:"role"`
	// Parts is the message content. It holds at least one part.
	Parts []Part `json:"parts"`
	// MessageID is assigned by the creator and unique per message.
	MessageID string `json:"messageId"`
	// TaskID is the identifier of the task the message is related to.
	TaskID string `json:"taskId,omitzero"`
	// ContextID is the context the message is associated with.
	ContextID string `json:"contextId,omitzero"`
	// Extensions lists the URIs of extensions that contributed to this message.
	Extensions []string `json:"extensions,omitzero"`
	// ReferenceTaskIDs lists tasks the message refers to for additional context.
	ReferenceTaskIDs []string `json:"referenceTaskIds,omitzero"`
	// Metadata holds extension metadata.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// NewMessageID returns a fresh message identifier.
func NewMessageID() string {
	return uuid.NewString()
}

// NewAgentTextMessage creates a new agent message containing a single [TextPart].
// contextID and taskID may be empty.
func NewAgentTextMessage(text, contextID, taskID string) *Message {
	return NewAgentPartsMessage([]Part{NewTextPart(text)}, contextID, taskID)
}

// NewAgentPartsMessage creates a new agent message from a list of parts.
func NewAgentPartsMessage(parts []Part, contextID, taskID string) *Message {
	return &Message{
		Role:      RoleAgent,
		Parts:     parts,
		MessageID: NewMessageID(),
		TaskID:    taskID,
		ContextID: contextID,
	}
}

// NewUserTextMessage creates a new user message containing a single [TextPart].
func NewUserTextMessage(text string) *Message {
	return &Message{
		Role:      RoleUser,
		Parts:     []Part{NewTextPart(text)},
		MessageID: NewMessageID(),
	}
}

// GetTextParts extracts the text content from all text parts.
func GetTextParts(parts []Part) []string {
	var texts []string
	for _, part := range parts {
		if tp, ok := part.(*TextPart); ok {
			texts = append(texts, tp.Text)
		}
	}
	return texts
}

// GetMessageText joins the text of all text parts of msg with delimiter.
func GetMessageText(msg *Message, delimiter string) string {
	if msg == nil {
		return ""
	}
	return strings.Join(GetTextParts(msg.Parts), delimiter)
}

// Clone returns a deep copy of m.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	return &Message{
		Role:             m.Role,
		Parts:            cloneParts(m.Parts),
		MessageID:        m.MessageID,
		TaskID:           m.TaskID,
		ContextID:        m.ContextID,
		Extensions:       cloneStrings(m.Extensions),
		ReferenceTaskIDs: cloneStrings(m.ReferenceTaskIDs),
		Metadata:         cloneMap(m.Metadata),
	}
}

// Validate reports whether m satisfies the structural rules enforced by the parser.
func (m *Message) Validate() error {
	if m.Role != RoleAgent && m.Role != RoleUser {
		return schemaErrorf("role", "invalid message role %q", m.Role)
	}
	if m.MessageID == "" {
		return schemaErrorf("messageId", "must not be empty")
	}
	return validateParts(m.Parts, "parts")
}

func validateParts(parts []Part, path fieldPath) error {
	if len(parts) == 0 {
		return schemaErrorf(path, "must contain at least one part")
	}
	for i, part := range parts {
		switch p := part.(type) {
		case *TextPart, *DataPart:
		case *FilePart:
			if p.File == nil {
				return newError(InvalidPart, path.index(i).field("file"), "file carries neither bytes nor uri")
			}
		default:
			return schemaErrorf(path.index(i), "unsupported part %T", part)
		}
	}
	return nil
}

// MarshalJSON implements [json.Marshaler].
func (m *Message) MarshalJSON() ([]byte, error) {
	type alias Message
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*alias
	}{KindMessage, (*alias)(m)})
}

// UnmarshalJSON implements [json.Unmarshaler].
func (m *Message) UnmarshalJSON(data []byte) error {
	msg, err := unmarshalWith(data, defaultParser.message)
	if err != nil {
		return err
	}
	*m = *msg
	return nil
}

// ParseMessage validates an untyped payload as a message with the default parser.
func ParseMessage(v any) (*Message, error) {
	return defaultParser.ParseMessage(v)
}

// ParseMessage validates an untyped payload as a message.
func (p *Parser) ParseMessage(v any) (*Message, error) {
	return p.message(v, "")
}

func (p *Parser) message(v any, path fieldPath) (*Message, error) {
	o, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	if err := p.checkKind(o, KindMessage); err != nil {
		return nil, err
	}
	return p.messageBody(o)
}

func (p *Parser) messageBody(o object) (*Message, error) {
	role, err := o.requiredString("role")
	if err != nil {
		return nil, err
	}
	if Role(role) != RoleUser && Role(role) != RoleAgent {
		return nil, schemaErrorf(o.path.field("role"), "got %q, want %q or %q", role, RoleUser, RoleAgent)
	}

	msg := &Message{Role: Role(role)}
	if msg.Parts, err = p.parts(o); err != nil {
		return nil, err
	}
	if msg.MessageID, err = o.nonEmptyString("messageId"); err != nil {
		return nil, err
	}
	if msg.TaskID, err = o.optionalString("taskId"); err != nil {
		return nil, err
	}
	if msg.ContextID, err = o.optionalString("contextId"); err != nil {
		return nil, err
	}
	if msg.Extensions, err = o.optionalStrings("extensions"); err != nil {
		return nil, err
	}
	if msg.ReferenceTaskIDs, err = o.optionalStrings("referenceTaskIds"); err != nil {
		return nil, err
	}
	if msg.Metadata, err = o.optionalMap("metadata"); err != nil {
		return nil, err
	}
	return msg, nil
}
