package youtube

import (
	"context"
	"log/slog"
)

// Access tokens expire without notice; the first authorization failure gets
// one refresh and one re-run, anything after that surfaces to the caller.
const maxReauthAttempts = 1

// execWithReauth enforces the client's whole retry policy in one place.
// The call must read the access token from the store on every invocation so
// a refresh is picked up by the re-run.
func (c *Client) execWithReauth(ctx context.Context, call func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= maxReauthAttempts; attempt++ {
		if attempt > 0 {
			slog.Info("Access token rejected, refreshing", "attempt", attempt)
			if refreshErr := c.Refresh(ctx); refreshErr != nil {
				return refreshErr
			}
		}

		err = call(ctx)
		if err == nil || !isAuthFailure(err) {
			return err
		}
	}

	return err
}
