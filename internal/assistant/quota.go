package assistant

import (
	"context"
)

// CheckQuota probes the remote service with its cheapest read-only call.
// A quota-exceeded signature in the error text fails fast with a
// KindQuotaExceeded error; any other failure returns false ("unknown"),
// letting callers proceed optimistically.
func CheckQuota(ctx context.Context, client Client) (bool, error) {
	if _, err := client.ListModels(ctx); err != nil {
		if Classify(err.Error()) == KindQuotaExceeded {
			return false, quotaError(err)
		}
		return false, nil
	}
	return true, nil
}
