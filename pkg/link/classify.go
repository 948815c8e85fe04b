package link

import (
	"context"
	"errors"
	"net/url"

	"github.com/homeline-hub/homeline-go/pkg/climacloud"
	"github.com/homeline-hub/homeline-go/pkg/flow"
)

// classify maps an authenticator failure to a user-facing error code.
// The boolean reports whether the error belongs to the known error
// surface; unknown errors must propagate to the caller unchanged.
func classify(err error, reauth bool) (flow.ErrorCode, bool) {
	var statusErr *climacloud.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.AuthRejected() {
			return flow.ErrorInvalidAuth, true
		}
		// Any other HTTP status counts as transport trouble.
		return flow.ErrorCannotConnect, true
	}

	// Some rejections arrive as a malformed 200 body rather than a
	// clean 401. Only the reauth path maps those to invalid_auth;
	// during fresh setup they propagate unclassified.
	if reauth && errors.Is(err, climacloud.ErrMalformedResponse) {
		return flow.ErrorInvalidAuth, true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return flow.ErrorCannotConnect, true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return flow.ErrorCannotConnect, true
	}

	return "", false
}
