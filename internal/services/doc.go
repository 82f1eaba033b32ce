// Package services talks to the watchlist backend and to plex.tv.
//
// # Backend client
//
// [APIService] sends JSON requests relative to the backend base URL. Reads
// that are safe to repeat go through [APIService.GetJSON], which retries
// transport failures and 5xx responses. Mutations are never retried.
// Every non-2xx response is returned as a [*StatusError].
//
// # Auth guard
//
// [AuthGuard] is the transport for every authenticated call. It reads the
// credential from storage through [StorageTokenSource] at request time and
// sends it verbatim in the Authorization header. Requests without a
// credential never leave the process unless they target an /auth route.
// A 401 discards the stored credential.
//
// # Session
//
// [Session] logs in over an unguarded client, stores the token, and runs
// logout hooks that reset client state.
//
// # Plex
//
// [PlexClient] creates and checks plex.tv login PINs and builds the approval
// URL. The flow around it lives in the plex package.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNoCredential] : no stored credential for a guarded call
//   - [shared.ErrUnauthorized] : the backend rejected the credential (via [StatusError])
//   - [shared.ErrHTTPStatus] : any other non-2xx response
//   - [shared.ErrAPIRequest] : the request never got a response
//   - [shared.ErrAuthFailed] : a login endpoint refused the credentials
package services
