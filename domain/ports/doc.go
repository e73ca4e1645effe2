// Package ports defines interfaces for infrastructure operations.
// The application layer depends on these abstractions; infrastructure
// adapters implement them.
package ports
