package storage

import (
	"context"

	"github.com/JamesPrial/text2graph/pkg/mcp"
)

// Backend persists the graph built from extraction results.
//
// Entities are identified by (type, name): creating an entity whose key is
// already stored keeps the stored ID and refreshes UpdatedAt. Relations are
// identified by (source, target, type) in the same way. Both create calls
// return the stored records in input order, so a returned ID that differs
// from the input ID marks a record that already existed.
type Backend interface {
	CreateEntities(ctx context.Context, entities []mcp.Entity) ([]mcp.Entity, error)
	CreateRelations(ctx context.Context, relations []mcp.Relation) ([]mcp.Relation, error)
	GetEntity(ctx context.Context, id string) (*mcp.Entity, error)
	SearchEntities(ctx context.Context, query string) ([]mcp.Entity, error)
	GetStatistics(ctx context.Context) (*mcp.Statistics, error)
	Close() error
}

func relationKey(r mcp.Relation) string {
	return r.SourceID + "\x00" + r.TargetID + "\x00" + r.RelationType
}
