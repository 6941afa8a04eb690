// Package migrate turns the schema descriptors into migration scripts. Each
// run diffs the descriptors against the snapshot kept in the artifacts
// directory and writes the next numbered script. Scripts are only written;
// applying them belongs to external tooling.
package migrate
