// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package a2a implements the data model and JSON-RPC wire contract of the Agent2Agent (A2A) protocol.
//
// It validates and routes incoming requests with [ParseRequest], decodes responses and stream
// frames with [ParseResponse] and [ParseStreamResult], and folds status and artifact update
// events into a task projection with [Projector] and [Fold].
//
// Every union of the protocol (parts, file contents, events, results, requests) is a sealed
// interface whose variants are selected by the "kind" discriminator. See [KindPolicy] for the
// handling of missing or conflicting discriminators.
package a2a

// Version is the version of this module.
const Version = "0.3.0"

// ProtocolVersion is the A2A protocol version implemented by this package.
const ProtocolVersion = "0.3.0"
