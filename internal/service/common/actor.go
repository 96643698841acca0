//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"
	"os/user"
)

// unknown replaces values that cannot be detected.
const unknown = "unknown"

// Operator identifies who started a session.
type Operator struct {
	// Hostname is the machine name where the session runs.
	Hostname string
	// Username is the system user who started the session.
	Username string
}

// DetectOperator gathers host and user information for the session logs.
// Detection failures are replaced by "unknown"; a session never fails because
// the operator cannot be identified.
func DetectOperator() Operator {
	op := Operator{
		Hostname: unknown,
		Username: unknown,
	}

	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		op.Hostname = hostname
	}

	if currentUser, err := user.Current(); err == nil && currentUser.Username != "" {
		op.Username = currentUser.Username
	}

	return op
}

// KV returns the operator as logger key-value pairs.
func (o Operator) KV() []any {
	return []any{"host", o.Hostname, "user", o.Username}
}
