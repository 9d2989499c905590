// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package schema validates section and global content payloads before they
// are persisted. Schemas are registered per type tag (sections) or per key
// (global content); the registry is the single write gate for content.
//
// Policy for unregistered tags: reject. The registry is populated once at
// startup, so an unknown tag is an editor error, never a pass-through.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FieldType is the expected JSON type of a field.
type FieldType string

// Supported field types.
const (
	TypeString FieldType = "string"
	TypeNumber FieldType = "number"
	TypeBool   FieldType = "bool"
	TypeArray  FieldType = "array"
	TypeObject FieldType = "object"
)

// Field describes one validated field of a content payload.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// MaxLen bounds string length in runes (0 = unbounded).
	MaxLen int
	// Enum restricts a string field to the listed values (nil = unrestricted).
	Enum []string
	// Items is the expected element type for array fields ("" = any).
	Items FieldType
	// Fields validates the elements of an object array or a nested object.
	Fields []Field
}

// Schema is the validation contract for one type tag or global content key.
type Schema struct {
	Fields []Field
}

// ValidationError enumerates every failing field with all of its reasons.
// It is surfaced to editors verbatim.
type ValidationError struct {
	Fields map[string][]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("validation failed: ")
	for i, name := range names {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Fields[name], ", "))
	}
	return sb.String()
}

// add records a failure reason for a field.
func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], reason)
}

// FieldErrors flattens the failure map to one message per field, for API
// responses that carry a single reason string.
func (e *ValidationError) FieldErrors() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for name, reasons := range e.Fields {
		out[name] = strings.Join(reasons, "; ")
	}
	return out
}

// Registry maps type tags and global content keys to schemas. Registration
// happens at startup; lookups are concurrent-safe.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds or replaces the schema for a tag.
func (r *Registry) Register(tag string, s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[tag] = s
}

// Resolve returns the schema registered for a tag.
func (r *Registry) Resolve(tag string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[tag]
	return s, ok
}

// Tags returns all registered tags, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.schemas))
	for tag := range r.schemas {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Validate checks payload against the schema registered for tag. On success
// the payload is returned unchanged; validation never rewrites content. On
// failure the returned *ValidationError lists every failing field, not just
// the first.
func (r *Registry) Validate(tag string, payload json.RawMessage) (json.RawMessage, *ValidationError) {
	s, ok := r.Resolve(tag)
	if !ok {
		verr := &ValidationError{}
		verr.add("type", fmt.Sprintf("unknown type %q", tag))
		return nil, verr
	}

	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		verr := &ValidationError{}
		verr.add("content", "content must be a JSON object")
		return nil, verr
	}

	verr := &ValidationError{}
	validateFields(verr, "", s.Fields, doc)
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return payload, nil
}

// validateFields checks each declared field of doc, recording failures under
// prefix-qualified names (e.g. "plans.0.price").
func validateFields(verr *ValidationError, prefix string, fields []Field, doc map[string]any) {
	for _, f := range fields {
		name := f.Name
		if prefix != "" {
			name = prefix + "." + f.Name
		}

		value, present := doc[f.Name]
		if !present || value == nil {
			if f.Required {
				verr.add(name, "is required")
			}
			continue
		}

		validateValue(verr, name, f, value)
	}
}

// validateValue checks a single value against a field declaration.
func validateValue(verr *ValidationError, name string, f Field, value any) {
	switch f.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			verr.add(name, "must be a string")
			return
		}
		if f.Required && strings.TrimSpace(s) == "" {
			verr.add(name, "is required")
		}
		if f.MaxLen > 0 && len([]rune(s)) > f.MaxLen {
			verr.add(name, fmt.Sprintf("must be at most %d characters", f.MaxLen))
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			verr.add(name, fmt.Sprintf("must be one of: %s", strings.Join(f.Enum, ", ")))
		}

	case TypeNumber:
		if _, ok := value.(float64); !ok {
			verr.add(name, "must be a number")
		}

	case TypeBool:
		if _, ok := value.(bool); !ok {
			verr.add(name, "must be a boolean")
		}

	case TypeArray:
		items, ok := value.([]any)
		if !ok {
			verr.add(name, "must be an array")
			return
		}
		for i, item := range items {
			itemName := fmt.Sprintf("%s.%d", name, i)
			if f.Items != "" {
				validateValue(verr, itemName, Field{Name: f.Name, Type: f.Items, Fields: f.Fields, Required: true}, item)
			} else if len(f.Fields) > 0 {
				obj, ok := item.(map[string]any)
				if !ok {
					verr.add(itemName, "must be an object")
					continue
				}
				validateFields(verr, itemName, f.Fields, obj)
			}
		}

	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			verr.add(name, "must be an object")
			return
		}
		if len(f.Fields) > 0 {
			validateFields(verr, name, f.Fields, obj)
		}

	default:
		verr.add(name, fmt.Sprintf("unsupported field type %q", f.Type))
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
