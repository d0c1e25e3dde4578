package postgres

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm"
)

// Registry collects the gorm models whose tables must exist before serving.
// It is append-only and safe for concurrent registration.
type Registry struct {
	mu     sync.Mutex
	models []any
	seen   map[reflect.Type]struct{}
}

// NewRegistry creates an empty model registry
func NewRegistry() *Registry {
	return &Registry{seen: make(map[reflect.Type]struct{})}
}

// Register appends models in order. A model whose type is already
// registered, as value or pointer, is ignored. Nil models are ignored.
func (r *Registry) Register(models ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, model := range models {
		if model == nil {
			continue
		}
		t := reflect.TypeOf(model)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if _, ok := r.seen[t]; ok {
			continue
		}
		r.seen[t] = struct{}{}
		r.models = append(r.models, model)
	}
}

// Models returns the registered models in registration order
func (r *Registry) Models() []any {
	r.mu.Lock()
	defer r.mu.Unlock()

	models := make([]any, len(r.models))
	copy(models, r.models)
	return models
}

// Len returns the number of registered models
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.models)
}

// EnsureSchema creates the table of every registered model that does not
// exist yet. Existing tables are left untouched, so repeated runs are no-ops.
func EnsureSchema(ctx context.Context, pool *Pool, registry *Registry) error {
	db := pool.GetDB().WithContext(ctx)
	migrator := db.Migrator()

	created := 0
	for _, model := range registry.Models() {
		table, err := tableName(db, model)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSchemaCreateFailed, err)
		}

		if migrator.HasTable(model) {
			pool.log.Debug("table exists", "table", table)
			continue
		}

		if err := migrator.CreateTable(model); err != nil {
			return fmt.Errorf("%w: table %q: %w", ErrSchemaCreateFailed, table, err)
		}
		created++
		pool.log.Info("table created", "table", table)
	}

	pool.log.Info("schema ensured", "models", registry.Len(), "created", created)
	return nil
}

func tableName(db *gorm.DB, model any) (string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return "", err
	}
	return stmt.Schema.Table, nil
}
