// ABOUTME: Data models for dragon records and API payloads
// ABOUTME: JSON-serializable structures matching the remote collection resource

package models

// Record is a single dragon in the catalog. ID and CreatedAt are assigned by
// the remote store and never set by the client.
type Record struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt"`
}

// RecordInput is the request body for creating a record
type RecordInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// RecordPatch is the request body for updating a record.
// Nil fields are omitted from the request and left unchanged by the store.
type RecordPatch struct {
	Name *string `json:"name,omitempty"`
	Type *string `json:"type,omitempty"`
}

// NewPatch builds a patch from optional values; empty strings mean "not provided".
func NewPatch(name, typ string) RecordPatch {
	var p RecordPatch
	if name != "" {
		p.Name = &name
	}
	if typ != "" {
		p.Type = &typ
	}
	return p
}

// Empty reports whether the patch carries no fields
func (p RecordPatch) Empty() bool {
	return p.Name == nil && p.Type == nil
}

// Apply returns a copy of r with the patch's fields replaced
func (p RecordPatch) Apply(r Record) Record {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	return r
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}
