// Package types defines the storage interfaces, funnel entity types, field
// kinds, and standard error types shared by the leadfunnel packages.
//
// A funnel runs against one profile: a LocalStore that survives restarts and
// a transient Storage that lives as long as the process.
package types
