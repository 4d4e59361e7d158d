// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/params.json
var paramsSchemaJSON []byte

const paramsSchemaURL = "params.json"

// paramsSchemas maps every known method to the schema of its params.
// A nil schema marks a method without params.
var paramsSchemas = compileParamsSchemas(map[string]string{
	MethodMessageSend:                  "MessageSendParams",
	MethodMessageStream:                "MessageSendParams",
	MethodTasksResubscribe:             "TaskIdParams",
	MethodTasksGet:                     "TaskQueryParams",
	MethodTasksCancel:                  "TaskIdParams",
	MethodPushNotificationConfigSet:    "TaskPushNotificationConfig",
	MethodPushNotificationConfigGet:    "GetTaskPushNotificationConfigParams",
	MethodPushNotificationConfigList:   "ListTaskPushNotificationConfigParams",
	MethodPushNotificationConfigDelete: "DeleteTaskPushNotificationConfigParams",
	MethodGetAuthenticatedExtendedCard: "",
})

func compileParamsSchemas(defs map[string]string) map[string]*jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(paramsSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("a2a: unmarshal params schema: %v", err))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(paramsSchemaURL, doc); err != nil {
		panic(fmt.Sprintf("a2a: add params schema: %v", err))
	}

	schemas := make(map[string]*jsonschema.Schema, len(defs))
	for method, def := range defs {
		if def == "" {
			schemas[method] = nil
			continue
		}
		schemas[method] = c.MustCompile(paramsSchemaURL + "#/$defs/" + def)
	}
	return schemas
}

// validateSchema checks params against schema and reports the first failing leaf as InvalidParams.
func validateSchema(schema *jsonschema.Schema, params any) error {
	if schema == nil {
		return nil
	}
	err := schema.Validate(params)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &Error{Kind: InvalidParams, Path: "params", Err: err}
	}

	leaf := deepestCause(verr)
	path := fieldPath("params")
	for _, tok := range leaf.InstanceLocation {
		if isIndex(tok) {
			path += fieldPath("[" + tok + "]")
			continue
		}
		path = path.field(tok)
	}
	if req, ok := leaf.ErrorKind.(*kind.Required); ok && len(req.Missing) > 0 {
		return newError(InvalidParams, path.field(req.Missing[0]), "required")
	}
	return newError(InvalidParams, path, "%s", leafMessage(leaf))
}

// deepestCause returns the first leaf with the longest instance location.
func deepestCause(e *jsonschema.ValidationError) *jsonschema.ValidationError {
	if len(e.Causes) == 0 {
		return e
	}
	var best *jsonschema.ValidationError
	for _, c := range e.Causes {
		leaf := deepestCause(c)
		if best == nil || len(leaf.InstanceLocation) > len(best.InstanceLocation) {
			best = leaf
		}
	}
	return best
}

var schemaPrinter = message.NewPrinter(language.English)

func leafMessage(e *jsonschema.ValidationError) string {
	return strings.TrimSpace(e.ErrorKind.LocalizedString(schemaPrinter))
}

func isIndex(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
