// Package config resolves the runtime mode and the connection settings of
// the process from its environment, optionally overlaid with a dotenv file.
// Resolution happens once at start-up and fails fast when a required
// connection string is missing.
package config
