package shared

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	dErrors "smartsave/pkg/domain-errors"
)

// IDParam parses a positive integer URL path parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be a positive integer", name)
	}
	return id, nil
}
