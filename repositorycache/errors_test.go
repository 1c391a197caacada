package repositorycache

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

func TestClassifyError(t *testing.T) {
	validationErr := goerrors.New("bad input", goerrors.CategoryValidation)

	tests := []struct {
		name     string
		err      error
		category goerrors.Category
	}{
		{"record not found from repository", repository.NewRecordNotFound(), goerrors.CategoryNotFound},
		{"wrapped record not found", fmt.Errorf("tx: %w", repository.NewRecordNotFound()), goerrors.CategoryNotFound},
		{"sql no rows", sql.ErrNoRows, goerrors.CategoryNotFound},
		{"already not found", goerrors.New("gone", goerrors.CategoryNotFound), goerrors.CategoryNotFound},
		{"validation passes through", validationErr, goerrors.CategoryValidation},
		{"anything else", errors.New("connection reset"), goerrors.CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyError(tt.err, "failed to load record")
			if !goerrors.IsCategory(err, tt.category) {
				t.Errorf("expected category %v, got %v", tt.category, err)
			}

			var typed *goerrors.Error
			if errors.As(tt.err, &typed) {
				return
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("expected source error to be preserved, got %v", err)
			}
		})
	}

	if err := ClassifyError(nil, "noop"); err != nil {
		t.Errorf("expected nil for nil error, got %v", err)
	}
}
