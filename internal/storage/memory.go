package storage

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/logging"
	"github.com/JamesPrial/text2graph/pkg/mcp"
)

// MemoryBackend keeps the graph in process memory
type MemoryBackend struct {
	mu        sync.RWMutex
	entities  map[string]mcp.Entity   // by ID
	byKey     map[string]string       // entity key -> ID
	relations map[string]mcp.Relation // by relation key
	logger    *slog.Logger
}

// NewMemoryBackend creates a new memory-based storage backend
func NewMemoryBackend() *MemoryBackend {
	logger := logging.GetGlobalLogger("storage.memory")

	logger.Info("Creating memory backend")

	return &MemoryBackend{
		entities:  make(map[string]mcp.Entity),
		byKey:     make(map[string]string),
		relations: make(map[string]mcp.Relation),
		logger:    logger,
	}
}

// CreateEntities stores entities, reusing nodes that share type and name
func (m *MemoryBackend) CreateEntities(ctx context.Context, entities []mcp.Entity) ([]mcp.Entity, error) {
	if len(entities) == 0 {
		m.logger.DebugContext(ctx, "No entities to create")
		return []mcp.Entity{}, nil
	}

	timer := logging.StartTimer(ctx, m.logger, "createEntities")
	defer timer.End()

	select {
	case <-ctx.Done():
		m.logger.WarnContext(ctx, "Create entities operation canceled")
		return nil, ctx.Err()
	default:
	}

	// Validate all entities first before making any changes
	for _, entity := range entities {
		if strings.TrimSpace(entity.ID) == "" {
			return nil, errors.New(errors.ErrCodeValidationRequired, "Entity ID cannot be empty or whitespace-only")
		}
		if strings.TrimSpace(entity.Name) == "" || strings.TrimSpace(entity.EntityType) == "" {
			return nil, errors.New(errors.ErrCodeValidationRequired, "Entity name and type are required")
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]mcp.Entity, 0, len(entities))
	created := 0
	now := time.Now().UTC()

	for _, entity := range entities {
		entity.EntityType = strings.ToUpper(entity.EntityType)
		key := entity.Key()

		if id, exists := m.byKey[key]; exists {
			existing := m.entities[id]
			existing.UpdatedAt = now
			if existing.Description == "" {
				existing.Description = entity.Description
			}
			m.entities[id] = existing
			stored = append(stored, existing)
			continue
		}

		if _, exists := m.entities[entity.ID]; exists {
			return nil, errors.Newf(errors.ErrCodeEntityAlreadyExists, "Entity with ID '%s' already exists", entity.ID)
		}

		m.entities[entity.ID] = entity
		m.byKey[key] = entity.ID
		stored = append(stored, entity)
		created++

		m.logger.DebugContext(ctx, "Entity stored in memory",
			slog.String("entity_id", entity.ID),
			slog.String("entity_name", entity.Name),
			slog.String("entity_type", entity.EntityType),
		)
	}

	m.logger.InfoContext(ctx, "Stored entities in memory",
		slog.Int("count", len(entities)),
		slog.Int("created", created),
		slog.Int("total_entities", len(m.entities)),
	)

	return stored, nil
}

// CreateRelations stores edges between existing entities
func (m *MemoryBackend) CreateRelations(ctx context.Context, relations []mcp.Relation) ([]mcp.Relation, error) {
	if len(relations) == 0 {
		return []mcp.Relation{}, nil
	}

	timer := logging.StartTimer(ctx, m.logger, "createRelations")
	defer timer.End()

	select {
	case <-ctx.Done():
		m.logger.WarnContext(ctx, "Create relations operation canceled")
		return nil, ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rel := range relations {
		if strings.TrimSpace(rel.ID) == "" {
			return nil, errors.New(errors.ErrCodeValidationRequired, "Relation ID cannot be empty or whitespace-only")
		}
		if _, ok := m.entities[rel.SourceID]; !ok {
			return nil, errors.Newf(errors.ErrCodeEntityNotFound, "Source entity '%s' not found", rel.SourceID)
		}
		if _, ok := m.entities[rel.TargetID]; !ok {
			return nil, errors.Newf(errors.ErrCodeEntityNotFound, "Target entity '%s' not found", rel.TargetID)
		}
	}

	stored := make([]mcp.Relation, 0, len(relations))
	now := time.Now().UTC()

	for _, rel := range relations {
		key := relationKey(rel)
		if existing, exists := m.relations[key]; exists {
			existing.UpdatedAt = now
			m.relations[key] = existing
			stored = append(stored, existing)
			continue
		}
		m.relations[key] = rel
		stored = append(stored, rel)
	}

	m.logger.InfoContext(ctx, "Stored relations in memory",
		slog.Int("count", len(relations)),
		slog.Int("total_relations", len(m.relations)),
	)

	return stored, nil
}

// GetEntity retrieves an entity by ID. A missing entity returns nil, nil.
func (m *MemoryBackend) GetEntity(ctx context.Context, id string) (*mcp.Entity, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entity, exists := m.entities[id]
	if !exists {
		m.logger.DebugContext(ctx, "Entity not found in memory",
			slog.String("entity_id", id),
		)
		return nil, nil
	}

	return &entity, nil
}

// SearchEntities returns entities whose name contains query, ignoring case.
// An empty query returns every entity. Results are ordered by name, then type.
func (m *MemoryBackend) SearchEntities(ctx context.Context, query string) ([]mcp.Entity, error) {
	timer := logging.StartTimer(ctx, m.logger, "searchEntities")
	defer timer.End()

	select {
	case <-ctx.Done():
		m.logger.WarnContext(ctx, "Search entities operation canceled")
		return nil, ctx.Err()
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]mcp.Entity, 0)
	for _, entity := range m.entities {
		if containsIgnoreCase(entity.Name, query) {
			results = append(results, entity)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].EntityType < results[j].EntityType
	})

	m.logger.InfoContext(ctx, "Search completed",
		slog.String("query", query),
		slog.Int("entities_scanned", len(m.entities)),
		slog.Int("results_count", len(results)),
	)

	return results, nil
}

// GetStatistics returns node and edge counts
func (m *MemoryBackend) GetStatistics(ctx context.Context) (*mcp.Statistics, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &mcp.Statistics{
		EntityCount:    len(m.entities),
		RelationCount:  len(m.relations),
		EntitiesByType: make(map[string]int),
	}
	for _, entity := range m.entities {
		stats.EntitiesByType[entity.EntityType]++
	}

	return stats, nil
}

// Close closes the memory backend (no-op)
func (m *MemoryBackend) Close() error {
	return nil
}

// containsIgnoreCase performs case-insensitive substring matching
func containsIgnoreCase(str, substr string) bool {
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}
