package environments

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by errors.Is for any unknown environment name.
var ErrNotFound = errors.New("environment configuration not found")

// NotFoundError reports a name missing from the profile table together with
// every name that would have been accepted.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("environment configuration not found for: %s. Available environments: %s",
		e.Name, strings.Join(e.Available, ", "))
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
