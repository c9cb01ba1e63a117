// Package persist provides the key/value backends that stores persist to.
//
// A Backend is a synchronous string-to-string map. vuey uses two of them,
// one session-scoped and one durable, and writes each store's record under
// the key "STORE/<name>".
//
// Implementations:
//
//   - Memory: in-process map, the default for both scopes
//   - File: one file per key in a directory
//   - SQL: a table in any database/sql database (SQLite, PostgreSQL, MySQL)
//   - Redis: any client compatible with github.com/redis/go-redis/v9
//   - S3: objects in an S3 bucket via aws-sdk-go-v2
//
// Network-backed implementations bound every call with a timeout (default
// 5 seconds) since the Backend interface carries no context.
package persist
