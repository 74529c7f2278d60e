// Package io provides JSON import and export for rulesets.
//
// # JSON Format
//
// A ruleset is stored as a single object holding its identity and the three
// derived tables:
//
//	{
//	  "rule": 1,
//	  "states": 2,
//	  "perms": 8,
//	  "up_states": [1, 0, 0, 0, 0, 0, 0, 0],
//	  "adjacency": [[7, 3, 6, 2], ...],
//	  "transitions": [[0, 0, 1, 1, 0, 0, 1, 1], ...]
//	}
//
// Only rule and states are required on import. The tables are redundant (a
// ruleset is fully determined by its rule and state count), so they serve
// as a checksum: [Document.Ruleset] rebuilds the ruleset and rejects a
// document whose tables disagree with INVALID_FORMAT.
//
// # Import
//
// Use [ImportJSON] to read and verify a ruleset from a file path, or
// [ReadJSON] to decode a [Document] from any io.Reader. Both paths take the
// largest state count to accept, so an untrusted file cannot request an
// arbitrarily large build.
//
// # Export
//
// Use [ExportJSON] to write a ruleset to a file, or [WriteJSON] to write to
// any io.Writer. The same document backs the cache entries and the HTTP
// API.
package io
