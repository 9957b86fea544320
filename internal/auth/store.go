// Package auth checks the shared-secret credential file and issues
// short-lived session tokens for the HTTP surface.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/polancodf2024/consulta/pkg/logging"
)

// ErrInvalidCredentials is returned when the token is not in the store.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Store maps secret tokens to display names. Lookup only.
type Store struct {
	users map[string]string
}

// LoadStore reads the credential file: one secret_token|display_name per
// line. Malformed lines are skipped with a warning.
func LoadStore(path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("auth: open %s: %w", path, err)
	}
	defer f.Close()

	users := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 2 {
			logger.Warn("auth: skipping malformed credential line", "path", path, "line", lineno)
			continue
		}
		users[parts[0]] = parts[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("auth: read %s: %w", path, err)
	}

	logger.Info("credential store loaded", "path", path, "users", len(users))
	return &Store{users: users}, nil
}

// Authenticate resolves a secret token to its display name. Exact match
// only; a miss is a rejection, not a retry.
func (s *Store) Authenticate(token string) (string, error) {
	name, ok := s.users[token]
	if !ok {
		return "", ErrInvalidCredentials
	}
	return name, nil
}
