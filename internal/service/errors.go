package service

import (
	"context"
	"errors"

	"github.com/gitanomongolomon/gmm-site/internal/repository"
	apperrors "github.com/gitanomongolomon/gmm-site/pkg/util/errorutil"
)

const (
	recordStore = "record store"
	blobStore   = "blob store"
)

// storeError translates a repository failure into the error taxonomy shown to operators.
func storeError(resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	kind, storeErr := repository.KindOf(err)
	switch kind {
	case repository.KindUndefinedColumn:
		return apperrors.NewSchemaMismatch(storeErr.Column, err)
	case repository.KindPermissionDenied:
		return apperrors.NewPermissionDenied("the record store rejected this change for the current role; check the table policies", err)
	case repository.KindUniqueViolation:
		return apperrors.NewConflict(resource+" already exists", map[string]any{"constraint": storeErr.Constraint})
	}
	return apperrors.NewUpstreamError(recordStore+" request failed", err)
}
