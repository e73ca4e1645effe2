package ports

import "github.com/Ndymario/dsd-ghidra/domain/entities"

// ConfigValidator validates a decoded config document before it is bound to
// a DsdConfig.
type ConfigValidator interface {
	// Validate checks doc against the config schema.
	Validate(doc any) (*entities.ValidationResult, error)
}
