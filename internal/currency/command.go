package currency

import (
	"context"
	"fmt"
)

// Update-values command outcomes
const (
	StatusAutoUpdateDisabled = "Auto-updating disabled in configuration."
	StatusValuesUpdated      = "Currencies values successfully updated."
)

// AutoUpdateOptions mirrors the auto-update configuration
type AutoUpdateOptions struct {
	Enabled bool
	Exclude []string
}

// UpdateResult is the outcome of UpdateValues
type UpdateResult struct {
	Updated bool   `json:"updated"`
	Message string `json:"message"`
}

// UpdateValues refreshes every currency rate from the snapshot. A disabled
// configuration is reported in the result, not as an error.
func UpdateValues(ctx context.Context, refresher ValuesRefresher, opts AutoUpdateOptions) (UpdateResult, error) {
	if !opts.Enabled {
		return UpdateResult{Message: StatusAutoUpdateDisabled}, nil
	}

	if err := refresher.RefreshAll(ctx, opts.Exclude, false); err != nil {
		return UpdateResult{}, fmt.Errorf("failed to update currency values: %w", err)
	}

	return UpdateResult{Updated: true, Message: StatusValuesUpdated}, nil
}
