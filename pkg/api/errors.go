package api

import (
	"errors"
	"net/http"

	"github.com/proximahq/proxima/pkg/httputil"
	"github.com/proximahq/proxima/pkg/manage"
	"github.com/proximahq/proxima/pkg/observability"
	"github.com/proximahq/proxima/pkg/storage"
)

// writeServiceError classifies errors coming out of the services and writes
// the matching envelope. Anything unrecognized falls through to the auth
// classifier, which ends in a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *manage.ConflictError

	switch {
	case errors.As(err, &conflict):
		httputil.WriteBadRequest(w, conflict.Error())
	case errors.Is(err, manage.ErrRoleInUse), errors.Is(err, manage.ErrAuthorityInUse):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, manage.ErrNotFound):
		httputil.WriteNotFound(w, "record not found")
	case errors.Is(err, storage.ErrFileNotFound):
		httputil.WriteNotFound(w, "file not found")
	default:
		observability.FromContext(r.Context()).WithError(err).Error("request failed")
		httputil.WriteAuthError(w, err)
	}
}
