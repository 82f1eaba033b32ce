// Package models defines the wire types shared by the watchlist client and its backend.
//
// The types mirror the JSON the server returns and accepts:
//   - [Entry] : one watched (movie/show) or played (game) record, with its [Activity] log and [Tag] set
//   - [WatchedAddRequest], [PlayedAddRequest], [WatchedUpdateRequest] : mutation payloads
//   - [UserSettings], [Follow], [ServerFeatures] : account level data
//
// Entries are located before they have a server identity by their [NaturalKey].
// Request types use pointer fields so that only the values a caller set are serialized.
//
// Pure helpers live alongside the types: rating scaling ([ToShowableRating], [ToWhichThumb]),
// progress scanning ([LatestWatched]) and list statistics ([ComputeStats]).
package models
