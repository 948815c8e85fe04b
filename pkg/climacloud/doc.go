// Package climacloud provides the HTTP client for the ClimaCloud account
// and device API.
//
// The client covers the two calls the account-linking flows need: Login
// exchanges account credentials for a context token, and ListDevices
// enumerates the controllable devices visible to a token (the linking flow
// uses it purely as a validation probe).
//
// Failures are typed so callers can classify them: HTTP-level rejections
// surface as [*StatusError], responses missing expected fields surface as
// [ErrMalformedResponse], and transport failures are returned wrapped from
// net/http. The client itself applies no retry policy and no per-call
// deadline beyond a safety net; callers bound calls with their context.
package climacloud
