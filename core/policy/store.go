// Package policy - Atomically swapped policy snapshots
// Hot-reloading pricing tables swaps a whole validated config; callers can
// never observe a half-updated table mid-calculation.
package policy

import (
	"sync/atomic"

	"go.uber.org/zap"

	"merlin-pricing/internal/logging"
)

// PolicyStore holds the process-wide current PolicyConfig.
// Reads are lock-free; writes replace the whole snapshot.
type PolicyStore struct {
	current atomic.Pointer[PolicyConfig]
}

// NewPolicyStore creates a store seeded with a validated config
func NewPolicyStore(cfg *PolicyConfig) (*PolicyStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &PolicyStore{}
	s.current.Store(cfg)
	return s, nil
}

// Current returns the active policy snapshot. The returned config must be
// treated as read-only.
func (s *PolicyStore) Current() *PolicyConfig {
	return s.current.Load()
}

// Swap validates and installs a new policy snapshot. On validation failure
// the previous snapshot stays active.
func (s *PolicyStore) Swap(cfg *PolicyConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	prev := s.current.Swap(cfg)
	logging.Info("policy snapshot swapped",
		zap.String("previous_version", prev.Version),
		zap.String("new_version", cfg.Version),
		zap.String("pricing_source", cfg.PricingSourceVersion))
	return nil
}
