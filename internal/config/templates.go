package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Marketwatch Configuration

[watch]
# Symbols to track on every run
symbols = ["AAPL", "MSFT", "BTC-USD"]
# Alert bands as "symbol:min:max"; leave a bound empty for no bound
# e.g. "AAPL:150:200" or "MSFT::500"
thresholds = []

[provider]
# Quote provider: "alphavantage" or "static"
name = "alphavantage"
# API key (or set MARKETWATCH_API_KEY)
api_key = ""
# Request timeout
timeout = "10s"
# Retry policy for transient provider failures
retry_attempts = 3
retry_delay = "2s"

[storage]
# SQLite database path (default: <configdir>/data/market_data.db)
database_path = ""
# CSV mirror path (default: <configdir>/data/market_data.csv)
csv_export_path = ""
# Rows older than this many days are removed by 'marketwatch prune'; 0 disables
retention_days = 0

[notifications]
# Print triggered alerts to the terminal
console = true

[notifications.email]
enabled = false
smtp_host = ""
smtp_port = 587
username = ""
password = ""
from = ""
to = ""

[log]
level = "info"
console = true
file = true
`

// createTemplateConfig writes a template config file and returns an error
// prompting the user to edit it.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file exists but could not be read: %s", path)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("created template config at %s, please edit it and retry", path)
}
