package knowledge

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/JamesPrial/text2graph/internal/extract"
	"github.com/JamesPrial/text2graph/internal/storage"
	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/logging"
	"github.com/JamesPrial/text2graph/pkg/mcp"
	"github.com/JamesPrial/text2graph/pkg/schema"
)

const (
	ToolText2Schema   = "text2schema"
	ToolBootstrap     = "graph__bootstrap"
	ToolSearch        = "graph__search"
	ToolGetEntity     = "graph__get_entity"
	ToolGetStatistics = "graph__get_statistics"

	toolArgText  = "text"
	toolArgQuery = "query"
	toolArgID    = "id"
)

// MCPTool represents an MCP tool with its metadata
type MCPTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GraphChanges reports what a bootstrap wrote to storage.
type GraphChanges struct {
	EntitiesCreated   int      `json:"entities_created"`
	EntitiesExisting  int      `json:"entities_existing"`
	RelationsCreated  int      `json:"relations_created"`
	RelationsExisting int      `json:"relations_existing"`
	EntityIDs         []string `json:"entity_ids"`
}

// BootstrapResult is returned by graph__bootstrap on success.
type BootstrapResult struct {
	Extraction *schema.ExtractionResult `json:"extraction"`
	Graph      GraphChanges             `json:"graph"`
	Status     string                   `json:"status"`
}

type textArgs struct {
	Text string `mapstructure:"text"`
}

type queryArgs struct {
	Query *string `mapstructure:"query"`
}

type idArgs struct {
	ID *string `mapstructure:"id"`
}

// Manager exposes extraction and the stored graph as MCP tools
type Manager struct {
	pipeline *extract.Pipeline
	storage  storage.Backend
	logger   *slog.Logger
}

// NewManager creates a Manager. storage may be nil, in which case only
// text2schema is offered.
func NewManager(pipeline *extract.Pipeline, storage storage.Backend) *Manager {
	return &Manager{
		pipeline: pipeline,
		storage:  storage,
		logger:   logging.GetGlobalLogger("knowledge"),
	}
}

// ExtractionMethod reports the method used by the underlying pipeline
func (m *Manager) ExtractionMethod() string {
	return m.pipeline.Method()
}

func stringSchema(name, description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			name: map[string]interface{}{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{name},
	}
}

// HandleListTools returns the list of available MCP tools
func (m *Manager) HandleListTools() []MCPTool {
	tools := []MCPTool{
		{
			Name:        ToolText2Schema,
			Description: "Extract entity types and subject-verb-object relationships from text as a provisional graph schema",
			InputSchema: stringSchema(toolArgText, "Text to analyze"),
		},
	}
	if m.storage == nil {
		return tools
	}

	return append(tools,
		MCPTool{
			Name:        ToolBootstrap,
			Description: "Extract a schema from text and store its entities and relationships in the graph",
			InputSchema: stringSchema(toolArgText, "Text to analyze and store"),
		},
		MCPTool{
			Name:        ToolSearch,
			Description: "Search stored entities by name",
			InputSchema: stringSchema(toolArgQuery, "Case-insensitive substring of the entity name"),
		},
		MCPTool{
			Name:        ToolGetEntity,
			Description: "Get a stored entity by ID",
			InputSchema: stringSchema(toolArgID, "Entity ID"),
		},
		MCPTool{
			Name:        ToolGetStatistics,
			Description: "Get entity and relationship counts for the stored graph",
			InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
		},
	)
}

// HandleCallTool handles tool calls for various MCP operations
func (m *Manager) HandleCallTool(ctx context.Context, toolName string, args map[string]interface{}) (interface{}, error) {
	ctx = logging.WithOperation(ctx, toolName)

	if toolName == ToolText2Schema {
		return m.handleText2Schema(ctx, args)
	}
	if m.storage == nil {
		return nil, errors.Newf(errors.ErrCodeUnknownTool, "unknown tool: %s", toolName)
	}

	switch toolName {
	case ToolBootstrap:
		return m.handleBootstrap(ctx, args)
	case ToolSearch:
		return m.handleSearch(ctx, args)
	case ToolGetEntity:
		return m.handleGetEntity(ctx, args)
	case ToolGetStatistics:
		return m.handleGetStatistics(ctx, args)
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownTool, "unknown tool: %s", toolName)
	}
}

func decodeArgs(args map[string]interface{}, out interface{}) error {
	if err := mapstructure.Decode(args, out); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidationType, "invalid tool arguments: "+err.Error())
	}
	return nil
}

// handleText2Schema runs extraction. Extraction errors are returned as an
// error envelope in the result, not as a tool error.
func (m *Manager) handleText2Schema(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var in textArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	result, err := m.pipeline.Run(ctx, in.Text)
	if err != nil {
		m.logger.WarnContext(ctx, "Extraction returned an error result",
			slog.String("error_code", string(errors.GetCode(err))),
			slog.String("error", errors.GetMessage(err)),
		)
	}
	return schema.Envelope(result, err), nil
}

// handleBootstrap extracts a schema and stores one entity per distinct
// (type, surface form) plus one relation per relationship.
func (m *Manager) handleBootstrap(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var in textArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}

	result, err := m.pipeline.Run(ctx, in.Text)
	if err != nil {
		return schema.NewErrorResult(err), nil
	}

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.ErrCodeContextCanceled, "request canceled")
	default:
	}

	entities := entitiesFromResult(result)
	stored, err := m.storage.CreateEntities(ctx, entities)
	if err != nil {
		return nil, err
	}

	changes := GraphChanges{EntityIDs: make([]string, 0, len(stored))}
	ids := make(map[string]string, len(stored))
	for i, entity := range stored {
		ids[entity.Key()] = entity.ID
		changes.EntityIDs = append(changes.EntityIDs, entity.ID)
		if entity.ID == entities[i].ID {
			changes.EntitiesCreated++
		} else {
			changes.EntitiesExisting++
		}
	}

	relations := relationsFromResult(result, ids)
	storedRelations, err := m.storage.CreateRelations(ctx, relations)
	if err != nil {
		return nil, err
	}
	for i, rel := range storedRelations {
		if rel.ID == relations[i].ID {
			changes.RelationsCreated++
		} else {
			changes.RelationsExisting++
		}
	}

	m.logger.InfoContext(ctx, "Graph bootstrapped from text",
		slog.Int("entities_created", changes.EntitiesCreated),
		slog.Int("entities_existing", changes.EntitiesExisting),
		slog.Int("relations_created", changes.RelationsCreated),
		slog.Int("relations_existing", changes.RelationsExisting),
	)

	return &BootstrapResult{
		Extraction: result,
		Graph:      changes,
		Status:     schema.StatusSuccess,
	}, nil
}

// entitiesFromResult lists one entity per distinct key, types in sorted
// order with their examples first, then relationship endpoints.
func entitiesFromResult(result *schema.ExtractionResult) []mcp.Entity {
	types := make([]string, 0, len(result.Entities))
	for t := range result.Entities {
		types = append(types, t)
	}
	sort.Strings(types)

	seen := make(map[string]bool)
	entities := make([]mcp.Entity, 0)
	add := func(name, entityType string) {
		key := mcp.EntityKey(entityType, name)
		if seen[key] {
			return
		}
		seen[key] = true
		description := ""
		if summary, ok := result.Entities[entityType]; ok {
			description = summary.Description
		}
		entities = append(entities, mcp.NewEntity(name, entityType, description))
	}

	for _, t := range types {
		for _, example := range result.Entities[t].Examples {
			add(example, t)
		}
	}
	for _, rel := range result.Relationships {
		add(rel.FromEntity, rel.FromType)
		add(rel.ToEntity, rel.ToType)
	}

	return entities
}

func relationsFromResult(result *schema.ExtractionResult, ids map[string]string) []mcp.Relation {
	now := time.Now().UTC()
	relations := make([]mcp.Relation, 0, len(result.Relationships))

	for _, rel := range result.Relationships {
		sourceID, okSource := ids[mcp.EntityKey(rel.FromType, rel.FromEntity)]
		targetID, okTarget := ids[mcp.EntityKey(rel.ToType, rel.ToEntity)]
		if !okSource || !okTarget {
			continue
		}
		relations = append(relations, mcp.Relation{
			ID:           uuid.New().String(),
			SourceID:     sourceID,
			TargetID:     targetID,
			RelationType: rel.Relationship,
			Confidence:   rel.Confidence,
			Source:       rel.Source,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	return relations
}

// handleSearch processes search requests
func (m *Manager) handleSearch(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var in queryArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.Query == nil {
		return nil, errors.ValidationRequired(toolArgQuery)
	}

	entities, err := m.storage.SearchEntities(ctx, *in.Query)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"entities": entities,
		"count":    len(entities),
	}, nil
}

// handleGetEntity processes get entity requests
func (m *Manager) handleGetEntity(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var in idArgs
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.ID == nil || *in.ID == "" {
		return nil, errors.ValidationRequired(toolArgID)
	}

	entity, err := m.storage.GetEntity(ctx, *in.ID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, errors.NotFound("Entity '" + *in.ID + "'")
	}

	return entity, nil
}

// handleGetStatistics processes get statistics requests
func (m *Manager) handleGetStatistics(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.ErrCodeContextCanceled, "request canceled")
	default:
	}

	return m.storage.GetStatistics(ctx)
}
