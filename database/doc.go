// Package database owns the single connection to the relational store. A
// Provider is built from a resolved config.Config, opens the driver matching
// the URL scheme and registers the schema models with bun. Callers receive the
// Provider explicitly; there is no package-level connection.
package database
