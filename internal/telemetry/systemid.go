package telemetry

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// systemIDFile is the file name the system id is stored under.
const systemIDFile = ".system_id"

var systemIDPattern = regexp.MustCompile(`^[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}$`)

// GenerateSystemID returns a random identifier formatted as XXXX-XXXX-XXXX.
func GenerateSystemID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate system ID: %w", err)
	}
	h := strings.ToUpper(hex.EncodeToString(u[:6]))
	return h[0:4] + "-" + h[4:8] + "-" + h[8:12], nil
}

// LoadOrCreateSystemID returns the id stored in configDir, creating and saving a new one
// when the file is missing or malformed.
func LoadOrCreateSystemID(fs afero.Fs, configDir string) (string, error) {
	if err := fs.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	idFile := filepath.Join(configDir, systemIDFile)
	if data, err := afero.ReadFile(fs, idFile); err == nil {
		if id := strings.TrimSpace(string(data)); isValidSystemID(id) {
			return id, nil
		}
	}

	id, err := GenerateSystemID()
	if err != nil {
		return "", err
	}
	if err := afero.WriteFile(fs, idFile, []byte(id), 0o644); err != nil {
		return "", fmt.Errorf("failed to save system ID: %w", err)
	}
	return id, nil
}

func isValidSystemID(id string) bool {
	return systemIDPattern.MatchString(id)
}
