package repositorycache

import (
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// ClassifyError wraps a repository failure with message. Missing records
// become not found, validation errors pass through untouched and anything
// else is internal.
func ClassifyError(err error, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsValidation(err) {
		return err
	}
	if repository.IsRecordNotFound(err) || goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, message)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message)
}
