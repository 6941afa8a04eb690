// Package types holds small value types shared across packages: enum
// contracts and pagination requests/results.
package types
