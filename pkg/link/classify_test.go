package link

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/homeline-hub/homeline-go/pkg/climacloud"
	"github.com/homeline-hub/homeline-go/pkg/flow"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		reauth    bool
		wantCode  flow.ErrorCode
		wantKnown bool
	}{
		{
			name:      "401 unauthorized",
			err:       &climacloud.StatusError{StatusCode: http.StatusUnauthorized, Endpoint: climacloud.LoginPath},
			wantCode:  flow.ErrorInvalidAuth,
			wantKnown: true,
		},
		{
			name:      "403 forbidden",
			err:       &climacloud.StatusError{StatusCode: http.StatusForbidden, Endpoint: climacloud.LoginPath},
			wantCode:  flow.ErrorInvalidAuth,
			wantKnown: true,
		},
		{
			name:      "500 server error",
			err:       &climacloud.StatusError{StatusCode: http.StatusInternalServerError, Endpoint: climacloud.DevicesPath},
			wantCode:  flow.ErrorCannotConnect,
			wantKnown: true,
		},
		{
			name:      "wrapped status error",
			err:       fmt.Errorf("login: %w", &climacloud.StatusError{StatusCode: http.StatusUnauthorized, Endpoint: climacloud.LoginPath}),
			wantCode:  flow.ErrorInvalidAuth,
			wantKnown: true,
		},
		{
			name:      "deadline exceeded",
			err:       context.DeadlineExceeded,
			wantCode:  flow.ErrorCannotConnect,
			wantKnown: true,
		},
		{
			name:      "wrapped deadline",
			err:       fmt.Errorf("login: %w", context.DeadlineExceeded),
			wantCode:  flow.ErrorCannotConnect,
			wantKnown: true,
		},
		{
			name:      "url error",
			err:       &url.Error{Op: "Post", URL: "https://cloud.example/login", Err: errors.New("connection refused")},
			wantCode:  flow.ErrorCannotConnect,
			wantKnown: true,
		},
		{
			name:      "unknown error",
			err:       errors.New("surprise"),
			wantKnown: false,
		},
		{
			name:      "cancellation is not a timeout",
			err:       context.Canceled,
			wantKnown: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, known := classify(tt.err, tt.reauth)
			if known != tt.wantKnown {
				t.Fatalf("classify known = %v, want %v", known, tt.wantKnown)
			}
			if code != tt.wantCode {
				t.Errorf("classify code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

// A malformed 200 body is an auth rejection only during reauth; fresh
// setup and import leave it unclassified. The asymmetry is deliberate.
func TestClassifyMalformedResponseAsymmetry(t *testing.T) {
	err := fmt.Errorf("login: %w", climacloud.ErrMalformedResponse)

	t.Run("reauth", func(t *testing.T) {
		code, known := classify(err, true)
		if !known {
			t.Fatal("classify known = false, want true during reauth")
		}
		if code != flow.ErrorInvalidAuth {
			t.Errorf("classify code = %q, want invalid_auth", code)
		}
	})

	t.Run("fresh setup", func(t *testing.T) {
		if _, known := classify(err, false); known {
			t.Error("classify known = true, want false outside reauth")
		}
	})
}

// A deadline expiry must never read as a credential problem, whatever
// the flow variant.
func TestClassifyTimeoutNeverInvalidAuth(t *testing.T) {
	for _, reauth := range []bool{false, true} {
		code, known := classify(context.DeadlineExceeded, reauth)
		if !known || code != flow.ErrorCannotConnect {
			t.Errorf("classify(deadline, reauth=%v) = (%q, %v), want (cannot_connect, true)", reauth, code, known)
		}
	}
}
