package resolve

import (
	"fmt"
	"sync"

	"gorm.io/gorm/schema"

	"github.com/oxhq/searchq/core"
)

// GormSchema implements Schema by parsing gorm model structs. Models
// reachable through relationships are discovered transitively, so
// registering the root model is usually enough.
type GormSchema struct {
	namer   schema.Namer
	schemas map[string]*schema.Schema
}

// NewGormSchema parses the given models and every model reachable from
// them through declared relationships.
func NewGormSchema(models ...any) (*GormSchema, error) {
	cache := &sync.Map{}
	namer := schema.NamingStrategy{}
	g := &GormSchema{namer: namer, schemas: make(map[string]*schema.Schema)}
	for _, model := range models {
		s, err := schema.Parse(model, cache, namer)
		if err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		g.collect(s)
	}
	return g, nil
}

func (g *GormSchema) collect(s *schema.Schema) {
	if _, seen := g.schemas[s.Name]; seen {
		return
	}
	g.schemas[s.Name] = s
	for _, rel := range s.Relationships.Relations {
		if rel.FieldSchema != nil {
			g.collect(rel.FieldSchema)
		}
	}
}

// ModelName reports the handle used for a parsed model struct.
func (g *GormSchema) ModelName(model any) (string, error) {
	s, err := schema.Parse(model, &sync.Map{}, g.namer)
	if err != nil {
		return "", fmt.Errorf("parse model %T: %w", model, err)
	}
	if _, ok := g.schemas[s.Name]; !ok {
		g.collect(s)
	}
	return s.Name, nil
}

// Table reports the table name backing a model.
func (g *GormSchema) Table(model string) (string, error) {
	s, err := g.lookup(model)
	if err != nil {
		return "", err
	}
	return s.Table, nil
}

// Columns maps attribute names (database column names) onto themselves
// for every scalar column of the model.
func (g *GormSchema) Columns(model string) (map[string]string, error) {
	s, err := g.lookup(model)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(s.FieldsByDBName))
	for dbName := range s.FieldsByDBName {
		out[dbName] = dbName
	}
	return out, nil
}

// Relations lists the model's traversable relations keyed by their
// snake-cased field name. Many-to-many relations are omitted: their
// join table cannot be expressed as a single join step.
func (g *GormSchema) Relations(model string) (map[string]Relation, error) {
	s, err := g.lookup(model)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Relation)
	for _, rel := range s.Relationships.Relations {
		if rel.Type == schema.Many2Many || rel.FieldSchema == nil || len(rel.References) == 0 {
			continue
		}
		ref := rel.References[0]
		if ref.PrimaryKey == nil || ref.ForeignKey == nil {
			continue
		}
		name := g.namer.ColumnName("", rel.Name)
		r := Relation{
			Name:        name,
			TargetModel: rel.FieldSchema.Name,
			TargetTable: rel.FieldSchema.Table,
			SelfRef:     rel.FieldSchema.Table == s.Table,
			Kind:        JoinLeft,
		}
		if ref.OwnPrimaryKey {
			// has-one / has-many: parent pk = child fk
			r.ParentColumn = ref.PrimaryKey.DBName
			r.ChildColumn = ref.ForeignKey.DBName
		} else {
			// belongs-to: parent fk = child pk
			r.ParentColumn = ref.ForeignKey.DBName
			r.ChildColumn = ref.PrimaryKey.DBName
		}
		out[name] = r
	}
	return out, nil
}

func (g *GormSchema) lookup(model string) (*schema.Schema, error) {
	s, ok := g.schemas[model]
	if !ok {
		return nil, &core.ResolutionError{
			Code:   core.CodeUnknownField,
			Path:   model,
			Reason: "model is not registered with the schema",
		}
	}
	return s, nil
}
