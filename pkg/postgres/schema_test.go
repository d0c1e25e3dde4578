package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanTarget struct {
	ID   uint `gorm:"primaryKey"`
	Host string
}

type scanResult struct {
	ID       uint `gorm:"primaryKey"`
	TargetID uint
	Severity string
}

const hasTableQuery = `SELECT count\(\*\) FROM information_schema\.tables WHERE table_schema = CURRENT_SCHEMA\(\) AND table_name = \$1 AND table_type = \$2`

func expectHasTable(mock sqlmock.Sqlmock, table string, exists bool) {
	count := 0
	if exists {
		count = 1
	}
	mock.ExpectQuery(hasTableQuery).
		WithArgs(table, "BASE TABLE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(&scanTarget{}, &scanResult{})
	r.Register(scanTarget{}, nil)

	models := r.Models()
	require.Len(t, models, 2, "duplicate and nil models should be ignored")
	assert.IsType(t, &scanTarget{}, models[0])
	assert.IsType(t, &scanResult{}, models[1])
	assert.Equal(t, 2, r.Len())

	models[0] = nil
	assert.NotNil(t, r.Models()[0], "Models should return a copy")
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Register(&scanTarget{}, &scanResult{})
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, r.Len())
}

func TestEnsureSchema_CreatesMissingTables(t *testing.T) {
	pool, mock := setupMockPool(t, testConfig(1, 0), false)

	registry := NewRegistry()
	registry.Register(&scanTarget{}, &scanResult{})

	expectHasTable(mock, "scan_targets", true)
	expectHasTable(mock, "scan_results", false)
	mock.ExpectExec(`CREATE TABLE "scan_results"`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), pool, registry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	pool, mock := setupMockPool(t, testConfig(1, 0), false)

	registry := NewRegistry()
	registry.Register(&scanTarget{})

	expectHasTable(mock, "scan_targets", false)
	mock.ExpectExec(`CREATE TABLE "scan_targets"`).WillReturnResult(sqlmock.NewResult(0, 0))
	expectHasTable(mock, "scan_targets", true)

	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, pool, registry))
	require.NoError(t, EnsureSchema(ctx, pool, registry), "second run should only check for the table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_EmptyRegistry(t *testing.T) {
	pool, mock := setupMockPool(t, testConfig(1, 0), false)

	require.NoError(t, EnsureSchema(context.Background(), pool, NewRegistry()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_CreateFailed(t *testing.T) {
	pool, mock := setupMockPool(t, testConfig(1, 0), false)
	errDenied := errors.New("permission denied for schema public")

	registry := NewRegistry()
	registry.Register(&scanTarget{}, &scanResult{})

	expectHasTable(mock, "scan_targets", false)
	mock.ExpectExec(`CREATE TABLE "scan_targets"`).WillReturnError(errDenied)

	err := EnsureSchema(context.Background(), pool, registry)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaCreateFailed)
	assert.ErrorIs(t, err, errDenied)
	assert.Contains(t, err.Error(), `"scan_targets"`)
	assert.NoError(t, mock.ExpectationsWereMet(), "later models should not be attempted")
}
