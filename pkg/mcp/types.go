package mcp

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity is a graph node created from an extracted entity occurrence.
// EntityType carries the tagger's label code (PERSON, ORG, ...).
type Entity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	EntityType  string    `json:"entityType"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewEntity returns a node with a fresh UUID and both timestamps set to now.
func NewEntity(name, entityType, description string) Entity {
	now := time.Now().UTC()
	return Entity{
		ID:          uuid.New().String(),
		Name:        name,
		EntityType:  entityType,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Key identifies a node by type and surface form. Two occurrences with the
// same key are the same node.
func (e Entity) Key() string {
	return EntityKey(e.EntityType, e.Name)
}

// EntityKey builds the node identity used for deduplication.
func EntityKey(entityType, name string) string {
	return strings.ToUpper(entityType) + "\x00" + name
}

// Relation is a directed, typed edge between two stored entities.
type Relation struct {
	ID           string    `json:"id"`
	SourceID     string    `json:"sourceId"`
	TargetID     string    `json:"targetId"`
	RelationType string    `json:"relationType"`
	Confidence   float64   `json:"confidence"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Statistics summarizes the stored graph.
type Statistics struct {
	EntityCount    int            `json:"entityCount"`
	RelationCount  int            `json:"relationCount"`
	EntitiesByType map[string]int `json:"entitiesByType"`
}

// Error represents a JSON-RPC error response compatible with MCP transport layer
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
