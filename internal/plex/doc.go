// Package plex logs in through plex.tv's PIN flow.
//
// A [Bridge] moves through Idle, PopupOpened, PinRequested and Polling to one
// of Completed, Cancelled or Failed. Failing to open the approval window is
// reported at once and leaves the bridge idle. Polling has no attempt limit:
// it stops when the pin carries a token, the window is closed, a check fails
// or the context ends.
package plex
