//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"

	"github.com/oshokin/infusion-controller/internal/logger"
)

// ErrUnknownLogLevel is returned when a level name cannot be parsed.
var ErrUnknownLogLevel = errors.New("unknown log level")

// ApplyLogLevel sets the global logger level by name. An empty name keeps the current level.
func ApplyLogLevel(name string) error {
	if name == "" {
		return nil
	}

	level, ok := logger.ParseLogLevel(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, name)
	}

	logger.SetLevel(level)

	return nil
}
