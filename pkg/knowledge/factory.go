package knowledge

import (
	"context"
	"fmt"
)

// Registry is the knowledge collaborator's own kind->constructor table,
// kept separate from connector.Registry's source/sink maps since the
// Knowledge pseudo-scope is consumed only by the OML Sql/Read evaluators,
// never by the pick/sink pipeline.
type Registry struct {
	build map[string]func(ctx context.Context, params map[string]any) (Store, error)
}

// NewRegistry installs the builtin knowledge_sql and knowledge_mongo
// kinds.
func NewRegistry() *Registry {
	r := &Registry{build: make(map[string]func(ctx context.Context, params map[string]any) (Store, error))}
	r.build["knowledge_sql"] = buildSQLStore
	r.build["knowledge_mongo"] = buildMongoStore
	return r
}

// Open builds a Store for the named connector kind, wrapping it in a
// StaticStore when params["static_tables"] names any tables.
func (r *Registry) Open(ctx context.Context, kind string, params map[string]any) (Store, error) {
	build, ok := r.build[kind]
	if !ok {
		return nil, fmt.Errorf("knowledge: unknown kind %q", kind)
	}
	store, err := build(ctx, params)
	if err != nil {
		return nil, err
	}
	if tables := staticTablesOf(params); len(tables) > 0 {
		return NewStaticStore(store, tables), nil
	}
	return store, nil
}

func staticTablesOf(params map[string]any) []string {
	raw, ok := params["static_tables"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func buildSQLStore(ctx context.Context, params map[string]any) (Store, error) {
	driver, _ := params["driver"].(string)
	dsn, _ := params["dsn"].(string)
	if dsn == "" {
		return nil, fmt.Errorf("knowledge: knowledge_sql requires params.dsn")
	}
	if driver == "" {
		driver = "mysql"
	}
	return NewSQLStore(driver, dsn)
}

func buildMongoStore(ctx context.Context, params map[string]any) (Store, error) {
	uri, _ := params["uri"].(string)
	db, _ := params["database"].(string)
	if uri == "" || db == "" {
		return nil, fmt.Errorf("knowledge: knowledge_mongo requires params.uri and params.database")
	}
	return NewMongoStore(ctx, uri, db)
}
