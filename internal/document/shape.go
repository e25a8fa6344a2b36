package document

import (
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"

	pkgerrors "github.com/mercaplaza/mercaplaza/pkg/errors"
)

// probe reads only the top-level keys needed for shape checks.
type probe struct {
	Meta *struct {
		Version *int `json:"version"`
	} `json:"meta"`
	Users    json.RawMessage `json:"users"`
	Stores   json.RawMessage `json:"stores"`
	Products json.RawMessage `json:"products"`
}

// looksLikeDocument is the minimal validity check applied to a persisted
// blob before trusting it: meta.version plus users and products present.
func looksLikeDocument(data []byte) bool {
	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		return false
	}
	if p.Meta == nil || p.Meta.Version == nil {
		return false
	}
	return len(p.Users) > 0 && len(p.Products) > 0
}

// validateSnapshotShape checks an imported snapshot for the required
// top-level collections. All missing fields are reported, not just the
// first.
func validateSnapshotShape(data []byte) error {
	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeImportShapeInvalid, err, "snapshot is not valid JSON")
	}

	var missing error
	if len(p.Users) == 0 {
		missing = multierr.Append(missing, fmt.Errorf("missing collection %q", "users"))
	}
	if len(p.Stores) == 0 {
		missing = multierr.Append(missing, fmt.Errorf("missing collection %q", "stores"))
	}
	if len(p.Products) == 0 {
		missing = multierr.Append(missing, fmt.Errorf("missing collection %q", "products"))
	}
	if missing != nil {
		fields := make([]string, 0, 3)
		for _, err := range multierr.Errors(missing) {
			fields = append(fields, err.Error())
		}
		return pkgerrors.Wrap(pkgerrors.CodeImportShapeInvalid, missing, "snapshot shape check failed").
			WithDetails(map[string]any{"missing": fields})
	}
	return nil
}
