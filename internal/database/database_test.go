package database

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/goliatone/go-order-catalog/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"postgres", Config{Driver: DriverPostgres, DSN: "postgres://localhost/catalog"}, false},
		{"unknown driver", Config{Driver: "mysql", DSN: "x"}, true},
		{"missing dsn", Config{Driver: DriverSQLite}, true},
		{"negative pool", Config{Driver: DriverSQLite, DSN: "x", MaxOpenConns: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpen_SQLiteSchemaAndHook(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	hook := NewQueryHook(logger)
	db.AddQueryHook(hook)

	ctx := context.Background()
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema() must be repeatable, got %v", err)
	}

	if got := hook.Queries(); got != int64(2*len(model.All())) {
		t.Errorf("expected %d statements, got %d", 2*len(model.All()), got)
	}

	hook.Reset()
	color := &model.Color{ID: uuid.New(), Name: "red"}
	if _, err := db.NewInsert().Model(color).Exec(ctx); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	var loaded model.Color
	if err := db.NewSelect().Model(&loaded).Where("color.id = ?", color.ID).Scan(ctx); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if loaded.Name != "red" {
		t.Errorf("expected red, got %q", loaded.Name)
	}
	if got := hook.Queries(); got != 2 {
		t.Errorf("expected 2 statements after reset, got %d", got)
	}
}
