// Package repository provides a generic repository built on Bun for CRUD
// operations, filtering, pagination, transactions and upsert. A repository
// can be bound to a namespaced physical table other than the model's own.
package repository
