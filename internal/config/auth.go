package config

import (
	"fmt"

	"github.com/LeJamon/goAMMd/internal/core/ledger"
)

// AuthConfig represents the [auth] section
type AuthConfig struct {
	// RequireSignatures rejects unsigned requests. With it off, a request
	// may name its caller in an "account" field, which is only suitable
	// for local testing.
	RequireSignatures bool `toml:"require_signatures" mapstructure:"require_signatures"`

	// Operators are the account IDs allowed to fund accounts.
	Operators []string `toml:"operators" mapstructure:"operators"`
}

// OperatorIDs parses Operators.
func (a *AuthConfig) OperatorIDs() ([]ledger.AccountID, error) {
	ids := make([]ledger.AccountID, 0, len(a.Operators))
	for _, s := range a.Operators {
		id, err := ledger.ParseAccountID(s)
		if err != nil {
			return nil, fmt.Errorf("operator: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate performs validation on the auth configuration
func (a *AuthConfig) Validate() error {
	_, err := a.OperatorIDs()
	return err
}
