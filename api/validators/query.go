package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/rsinghdev/storekhata-backend/pkg/errors"
)

// ParseQueryEnum returns the value of a query parameter constrained to a fixed
// set, or the default when absent.
func ParseQueryEnum(r *http.Request, key, defaultVal string, allowed ...string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	for _, candidate := range allowed {
		if raw == candidate {
			return raw, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").
		WithDetails(map[string]any{"field": key, "allowed": allowed})
}
