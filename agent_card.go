// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// TransportProtocol names a transport an agent can be reached over.
type TransportProtocol string

// Supported transports.
const (
	TransportJSONRPC  TransportProtocol = "JSONRPC"
	TransportGRPC     TransportProtocol = "GRPC"
	TransportHTTPJSON TransportProtocol = "HTTP+JSON"
)

// AgentCard is the self-describing manifest of an agent.
type AgentCard struct {
	// Name is the human readable name of the agent.
	Name string `json:"name"`
	// Description assists users and other agents in understanding what the agent can do.
	Description string `json:"description"`
	// URL is the preferred endpoint of the agent.
	URL string `json:"url"`
	// Version is the version of the agent.
	Version string `json:"version"`
	// ProtocolVersion is the A2A protocol version supported by the agent.
	ProtocolVersion string `json:"protocolVersion,omitzero"`
	// PreferredTransport is the transport available at URL. Defaults to JSONRPC.
	PreferredTransport   TransportProtocol `json:"preferredTransport,omitzero"`
	AdditionalInterfaces []AgentInterface  `json:"additionalInterfaces,omitzero"`
	Provider             *AgentProvider    `json:"provider,omitzero"`
	IconURL              string            `json:"iconUrl,omitzero"`
	DocumentationURL     string            `json:"documentationUrl,omitzero"`
	Capabilities         AgentCapabilities `json:"capabilities"`
	SecuritySchemes      SecuritySchemes   `json:"securitySchemes,omitzero"`
	// Security lists alternative sets of scheme requirements, keyed by scheme name.
	Security           []map[string][]string `json:"security,omitzero"`
	DefaultInputModes  []string              `json:"defaultInputModes"`
	DefaultOutputModes []string              `json:"defaultOutputModes"`
	Skills             []AgentSkill          `json:"skills"`
	// SupportsAuthenticatedExtendedCard advertises agent/getAuthenticatedExtendedCard.
	SupportsAuthenticatedExtendedCard bool                 `json:"supportsAuthenticatedExtendedCard,omitzero"`
	Signatures                        []AgentCardSignature `json:"signatures,omitzero"`
}

// AgentInterface is an additional URL and transport combination.
type AgentInterface struct {
	URL       string            `json:"url"`
	Transport TransportProtocol `json:"transport"`
}

// AgentProvider represents the service provider of an agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url"`
}

// AgentCapabilities defines optional capabilities supported by an agent.
type AgentCapabilities struct {
	Streaming              bool             `json:"streaming,omitzero"`
	PushNotifications      bool             `json:"pushNotifications,omitzero"`
	StateTransitionHistory bool             `json:"stateTransitionHistory,omitzero"`
	Extensions             []AgentExtension `json:"extensions,omitzero"`
}

// AgentExtension declares a protocol extension supported by an agent.
type AgentExtension struct {
	URI         string         `json:"uri"`
	Description string         `json:"description,omitzero"`
	Required    bool           `json:"required,omitzero"`
	Params      map[string]any `json:"params,omitzero"`
}

// AgentSkill describes a unit of capability an agent can perform.
type AgentSkill struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Tags        []string              `json:"tags"`
	Examples    []string              `json:"examples,omitzero"`
	InputModes  []string              `json:"inputModes,omitzero"`
	OutputModes []string              `json:"outputModes,omitzero"`
	Security    []map[string][]string `json:"security,omitzero"`
}

// AgentCardSignature is a JWS signature over the agent card.
type AgentCardSignature struct {
	Protected string         `json:"protected"`
	Signature string         `json:"signature"`
	Header    map[string]any `json:"header,omitzero"`
}

func (*AgentCard) isResult() {}

// Validate reports the first missing or inconsistent field of the card.
func (c *AgentCard) Validate() error {
	switch {
	case c.Name == "":
		return schemaErrorf("name", "required")
	case c.Description == "":
		return schemaErrorf("description", "required")
	case c.URL == "":
		return schemaErrorf("url", "required")
	case c.Version == "":
		return schemaErrorf("version", "required")
	}
	if c.Provider != nil && c.Provider.Organization == "" {
		return schemaErrorf("provider.organization", "required")
	}
	for i, skill := range c.Skills {
		path := fieldPath("skills").index(i)
		if skill.ID == "" {
			return schemaErrorf(path.field("id"), "required")
		}
		if skill.Name == "" {
			return schemaErrorf(path.field("name"), "required")
		}
	}
	for i, req := range c.Security {
		for name := range req {
			if _, ok := c.SecuritySchemes[name]; !ok {
				return schemaErrorf(fieldPath("security").index(i), "references undeclared scheme %q", name)
			}
		}
	}
	for _, name := range c.SecuritySchemes.Names() {
		if err := c.SecuritySchemes[name].Validate(); err != nil {
			return schemaErrorf(fieldPath("securitySchemes").field(name), "%v", err)
		}
	}
	return nil
}

// SecurityScheme describes one way of authenticating to an agent.
//
// The implementations are [*APIKeySecurityScheme], [*HTTPAuthSecurityScheme],
// [*OAuth2SecurityScheme], [*OpenIDConnectSecurityScheme] and [*MutualTLSSecurityScheme].
type SecurityScheme interface {
	// SchemeType returns the value of the "type" discriminator.
	SchemeType() string
	// Validate reports whether the scheme is complete.
	Validate() error

	isSecurityScheme()
}

// Location is where an API key is carried.
type Location string

// Valid locations for API keys.
const (
	LocationCookie Location = "cookie"
	LocationHeader Location = "header"
	LocationQuery  Location = "query"
)

// APIKeySecurityScheme defines an API Key security scheme.
type APIKeySecurityScheme struct {
	Description string   `json:"description,omitzero"`
	In          Location `json:"in"`
	Name        string   `json:"name"`
}

// HTTPAuthSecurityScheme defines an HTTP Authentication security scheme.
type HTTPAuthSecurityScheme struct {
	Description  string `json:"description,omitzero"`
	Scheme       string `json:"scheme"`
	BearerFormat string `json:"bearerFormat,omitzero"`
}

// OAuth2SecurityScheme defines an OAuth 2.0 security scheme.
type OAuth2SecurityScheme struct {
	Description       string     `json:"description,omitzero"`
	Flows             OAuthFlows `json:"flows"`
	OAuth2MetadataURL string     `json:"oauth2MetadataUrl,omitzero"`
}

// OAuthFlows lists the OAuth 2.0 flows an agent accepts.
type OAuthFlows struct {
	AuthorizationCode *OAuthFlow `json:"authorizationCode,omitzero"`
	ClientCredentials *OAuthFlow `json:"clientCredentials,omitzero"`
	Implicit          *OAuthFlow `json:"implicit,omitzero"`
	Password          *OAuthFlow `json:"password,omitzero"`
}

// OAuthFlow configures one OAuth 2.0 flow.
type OAuthFlow struct {
	AuthorizationURL string            `json:"authorizationUrl,omitzero"`
	TokenURL         string            `json:"tokenUrl,omitzero"`
	RefreshURL       string            `json:"refreshUrl,omitzero"`
	Scopes           map[string]string `json:"scopes"`
}

// OpenIDConnectSecurityScheme defines an OpenID Connect security scheme.
type OpenIDConnectSecurityScheme struct {
	Description      string `json:"description,omitzero"`
	OpenIDConnectURL string `json:"openIdConnectUrl"`
}

// MutualTLSSecurityScheme defines a mutual TLS security scheme.
type MutualTLSSecurityScheme struct {
	Description string `json:"description,omitzero"`
}

var (
	_ SecurityScheme = (*APIKeySecurityScheme)(nil)
	_ SecurityScheme = (*HTTPAuthSecurityScheme)(nil)
	_ SecurityScheme = (*OAuth2SecurityScheme)(nil)
	_ SecurityScheme = (*OpenIDConnectSecurityScheme)(nil)
	_ SecurityScheme = (*MutualTLSSecurityScheme)(nil)
)

func (*APIKeySecurityScheme) SchemeType() string        { return "apiKey" }
func (*HTTPAuthSecurityScheme) SchemeType() string      { return "http" }
func (*OAuth2SecurityScheme) SchemeType() string        { return "oauth2" }
func (*OpenIDConnectSecurityScheme) SchemeType() string { return "openIdConnect" }
func (*MutualTLSSecurityScheme) SchemeType() string     { return "mutualTLS" }

func (*APIKeySecurityScheme) isSecurityScheme()        {}
func (*HTTPAuthSecurityScheme) isSecurityScheme()      {}
func (*OAuth2SecurityScheme) isSecurityScheme()        {}
func (*OpenIDConnectSecurityScheme) isSecurityScheme() {}
func (*MutualTLSSecurityScheme) isSecurityScheme()     {}

// Validate ensures the APIKeySecurityScheme is valid.
func (s *APIKeySecurityScheme) Validate() error {
	if s.Name == "" {
		return errors.New("API key security scheme name cannot be empty")
	}
	if s.In != LocationCookie && s.In != LocationHeader && s.In != LocationQuery {
		return fmt.Errorf("invalid location for API key: %q", s.In)
	}
	return nil
}

// Validate ensures the HTTPAuthSecurityScheme is valid.
func (s *HTTPAuthSecurityScheme) Validate() error {
	if s.Scheme == "" {
		return errors.New("HTTP auth security scheme scheme cannot be empty")
	}
	return nil
}

// Validate ensures the OAuth2SecurityScheme is valid.
func (s *OAuth2SecurityScheme) Validate() error {
	f := s.Flows
	if f.AuthorizationCode == nil && f.ClientCredentials == nil && f.Implicit == nil && f.Password == nil {
		return errors.New("OAuth2 security scheme declares no flow")
	}
	if f.AuthorizationCode != nil && (f.AuthorizationCode.AuthorizationURL == "" || f.AuthorizationCode.TokenURL == "") {
		return errors.New("authorization code flow requires authorizationUrl and tokenUrl")
	}
	if f.ClientCredentials != nil && f.ClientCredentials.TokenURL == "" {
		return errors.New("client credentials flow requires tokenUrl")
	}
	if f.Implicit != nil && f.Implicit.AuthorizationURL == "" {
		return errors.New("implicit flow requires authorizationUrl")
	}
	if f.Password != nil && f.Password.TokenURL == "" {
		return errors.New("password flow requires tokenUrl")
	}
	return nil
}

// Validate ensures the OpenIDConnectSecurityScheme is valid.
func (s *OpenIDConnectSecurityScheme) Validate() error {
	if s.OpenIDConnectURL == "" {
		return errors.New("OpenID Connect security scheme requires openIdConnectUrl")
	}
	return nil
}

// Validate ensures the MutualTLSSecurityScheme is valid.
func (s *MutualTLSSecurityScheme) Validate() error { return nil }

// SecuritySchemes maps scheme names to their definitions.
type SecuritySchemes map[string]SecurityScheme

// Names returns the scheme names in sorted order.
func (s SecuritySchemes) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON implements [json.Marshaler].
func (s SecuritySchemes) MarshalJSON() ([]byte, error) {
	out := make(map[string]jsontext.Value, len(s))
	for name, scheme := range s {
		body, err := json.Marshal(scheme)
		if err != nil {
			return nil, err
		}
		typ, err := json.Marshal(scheme.SchemeType())
		if err != nil {
			return nil, err
		}
		// Prepend the discriminator to the encoded scheme object.
		v := append([]byte(`{"type":`), typ...)
		if len(body) > 2 {
			v = append(v, ',')
		}
		out[name] = append(v, body[1:]...)
	}
	return json.Marshal(out, json.Deterministic(true))
}

// UnmarshalJSON implements [json.Unmarshaler].
func (s *SecuritySchemes) UnmarshalJSON(data []byte) error {
	var raw map[string]jsontext.Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(SecuritySchemes, len(raw))
	for name, v := range raw {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(v, &head); err != nil {
			return fmt.Errorf("security scheme %q: %w", name, err)
		}
		var scheme SecurityScheme
		switch head.Type {
		case "apiKey":
			scheme = &APIKeySecurityScheme{}
		case "http":
			scheme = &HTTPAuthSecurityScheme{}
		case "oauth2":
			scheme = &OAuth2SecurityScheme{}
		case "openIdConnect":
			scheme = &OpenIDConnectSecurityScheme{}
		case "mutualTLS":
			scheme = &MutualTLSSecurityScheme{}
		default:
			return schemaErrorf(fieldPath(name).field("type"), "unknown security scheme type %q", head.Type)
		}
		// Ignore the discriminator, which the concrete types do not declare.
		if err := json.Unmarshal(v, scheme, json.RejectUnknownMembers(false)); err != nil {
			return fmt.Errorf("security scheme %q: %w", name, err)
		}
		out[name] = scheme
	}
	*s = out
	return nil
}
