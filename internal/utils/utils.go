package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const configTemplate = `# Optional API endpoint, default "https://api2.transloadit.com"
service = "https://api2.transloadit.com"

# Optional log level, default "info"
loglevel = "info"

# Optional output format for responses, "json" or "yaml". Default "json"
output = "json"

# Optional bind address for 'gotransloadit serve', default "0.0.0.0"
bind_address = "0.0.0.0"

# Optional TCP port for 'gotransloadit serve', default 8090
port = 8090

# Optional number of import workers, default 4. This controls how many files are
# reserved and added in parallel by 'gotransloadit import'.
import_workers = 4

# Optional limit on reserve/add requests per second during imports, default 0 (no limit)
import_rate = 0.0

# Optional template used when --params does not name one
template_id = ""

# Optional URL the service calls when an assembly finishes. Point it at
# 'gotransloadit serve' to collect notifications.
notify_url = ""

[auth]
# Account key placed into params.auth.key when creating assemblies
key = "{{AUTH_KEY}}"

[watch]
# Optional polling interval in secs, default 2.
polling_interval = 2

# Optional maximum number of status polls before giving up, default 300.
max_polls = 300
`

// GenerateConfig writes a configuration file with the given auth key,
// backing up any existing file first
func GenerateConfig(configPath, authKey string) error {
	fmt.Printf("Generating config %s\n", configPath)

	config := strings.Replace(configTemplate, "{{AUTH_KEY}}", authKey, 1)

	if _, err := os.Stat(configPath); err == nil {
		backupPath := configPath + ".bak"
		fmt.Printf("Backing up config %s\n", configPath)
		if err := os.Rename(configPath, backupPath); err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	fmt.Printf("Writing %s\n", configPath)
	if err := os.WriteFile(configPath, []byte(config), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ParseKeyValues turns "key=value" pairs into a map. Later keys win.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", pair)
		}
		values[key] = value
	}
	return values, nil
}

// ReadArgument returns s, or the contents of the file it names when it starts with '@'
func ReadArgument(s string) (string, error) {
	path, ok := strings.CutPrefix(s, "@")
	if !ok {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
