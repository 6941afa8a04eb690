// Package schema is the canonical definition of the persisted data: table
// descriptors consumed by DDL and migration generation, the bun models used
// to build typed queries, and the namespace convention mapping logical
// table names to physical ones.
//
// Required text and date columns without a default are tagged nullzero on
// the models, so an omitted value reaches the store as NULL and is rejected
// by the NOT NULL constraint instead of being stored as a Go zero value.
// Amounts carry no such tag because zero is a valid amount; the required
// amounts without a default are decimal.NullDecimal instead, so leaving
// them unset also reaches the store as NULL.
package schema
