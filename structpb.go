// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package a2a

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// DataPartFromStruct returns a [DataPart] carrying the fields of s.
func DataPartFromStruct(s *structpb.Struct) *DataPart {
	if s == nil {
		return NewDataPart(map[string]any{})
	}
	return NewDataPart(s.AsMap())
}

// ToStruct converts the payload of p into a protobuf Struct.
//
// The conversion fails when the payload holds values that have no JSON representation.
func (p *DataPart) ToStruct() (*structpb.Struct, error) {
	s, err := structpb.NewStruct(p.Data)
	if err != nil {
		return nil, fmt.Errorf("convert data part to struct: %w", err)
	}
	return s, nil
}

// MetadataToStruct converts a metadata map into a protobuf Struct. A nil map yields nil.
func MetadataToStruct(m map[string]any) (*structpb.Struct, error) {
	if m == nil {
		return nil, nil
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("convert metadata to struct: %w", err)
	}
	return s, nil
}
