package schemas

import (
	"fmt"
	"sort"

	"litgb/contexts/contest-core/polling-engine/domain/entities"
	domainerrors "litgb/contexts/contest-core/polling-engine/domain/errors"
)

// New instantiates the schema variant named by the handler in the config row.
func New(config entities.SchemaInfo) (PollingSchema, error) {
	switch config.HandlerName {
	case DuelHandlerName:
		return NewDuel(config), nil
	case TrielHandlerName:
		return NewTriel(config), nil
	case Closed4HandlerName:
		return NewClosed4(config), nil
	case OpenHandlerName:
		return NewOpen(config), nil
	default:
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrUnknownHandler, config.HandlerName)
	}
}

// Registry holds the instantiated schema variants in a fixed enumeration
// order (ascending config ID) so that schema selection is deterministic.
type Registry struct {
	ordered []PollingSchema
	byID    map[int64]PollingSchema
}

func NewRegistry(configs []entities.SchemaInfo) (*Registry, error) {
	registry := &Registry{byID: make(map[int64]PollingSchema, len(configs))}
	for _, config := range configs {
		schema, err := New(config)
		if err != nil {
			return nil, err
		}
		registry.ordered = append(registry.ordered, schema)
		registry.byID[config.ID] = schema
	}
	sort.SliceStable(registry.ordered, func(i, j int) bool {
		return registry.ordered[i].Info().ID < registry.ordered[j].Info().ID
	})
	return registry, nil
}

func (r *Registry) ByID(id int64) (PollingSchema, error) {
	schema, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domainerrors.ErrSchemaNotFound, id)
	}
	return schema, nil
}

func (r *Registry) All() []PollingSchema {
	return r.ordered
}

// Choose returns the first schema, in enumeration order, applicable to the
// given competition type and submitted member count.
func (r *Registry) Choose(openType bool, submittedMemberCount int) (PollingSchema, error) {
	for _, schema := range r.ordered {
		if schema.ForOpenType() != openType {
			continue
		}
		if submittedMemberCount < schema.MinimumMemberCount() {
			continue
		}
		if max := schema.MaximumMemberCount(); max > 0 && submittedMemberCount > max {
			continue
		}
		return schema, nil
	}
	return nil, domainerrors.Rule(
		"no polling schema is applicable for open_type=%t with %d submitting members",
		openType, submittedMemberCount)
}
