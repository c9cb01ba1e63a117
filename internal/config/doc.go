// Package config loads vuey.json, the configuration read by the vuey CLI.
//
// A minimal file selects a durable backend:
//
//	{
//	  "durable": {"kind": "sqlite", "dsn": "file:vuey.db"},
//	  "inspect": {"addr": ":7070", "metrics": true},
//	  "log": {"level": "info", "format": "text"}
//	}
//
// Every field can be overridden from the environment with a VUEY_ variable:
// VUEY_DURABLE_KIND, VUEY_SESSION_DIR, VUEY_INSPECT_ADDR, VUEY_LOG_LEVEL and
// so on. Relative paths are resolved against the directory holding the file.
package config
