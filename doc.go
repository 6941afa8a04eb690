// Package ldj gives typed access to the ldj users and articles tables
// through a database.Provider constructed by the caller.
package ldj
