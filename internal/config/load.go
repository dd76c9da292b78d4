package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable holding the config file path.
const EnvConfigFile = "NBCTL_CONFIG"

// Load builds the configuration from defaults, the YAML file and the environment.
//
// The file is taken from path, then from NBCTL_CONFIG, then from the user
// config directory. Only an explicitly named file is required to exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		explicit = false
		path = defaultConfigPath()
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.applyEnv()
	cfg.Timeouts = LoadTimeouts()
	return cfg, nil
}

// LoadFile reads and parses a YAML file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.Timeouts = LoadTimeouts()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.APIURL, "NETBOX_API_URL")
	setString(&c.Token, "NETBOX_TOKEN")
	setString(&c.DefaultTenant, "NETBOX_DEFAULT_TENANT")
	setString(&c.DefaultSite, "NETBOX_DEFAULT_SITE")
	setString(&c.DefaultCluster, "NETBOX_DEFAULT_CLUSTER")
	c.RoleID = parseInt("NETBOX_DEFAULT_ROLE_ID", c.RoleID)

	c.Allocation.MACAttempts = parseInt("NBCTL_MAC_ATTEMPTS", c.Allocation.MACAttempts)
	c.Allocation.IdentifierAttempts = parseInt("NBCTL_UUID_ATTEMPTS", c.Allocation.IdentifierAttempts)
	c.Allocation.SlotMin = parseInt("NBCTL_SLOT_MIN", c.Allocation.SlotMin)
	c.Allocation.SlotMax = parseInt("NBCTL_SLOT_MAX", c.Allocation.SlotMax)
	setString(&c.Allocation.MACPrefix, "NBCTL_MAC_PREFIX")

	setString(&c.Journal.Bucket, "NBCTL_JOURNAL_BUCKET")
	setString(&c.Journal.Prefix, "NBCTL_JOURNAL_PREFIX")
	setString(&c.Journal.Endpoint, "NBCTL_JOURNAL_ENDPOINT")
	setString(&c.Journal.Region, "NBCTL_JOURNAL_REGION")
	setString(&c.Journal.AccessKey, "NBCTL_JOURNAL_ACCESS_KEY")
	setString(&c.Journal.SecretKey, "NBCTL_JOURNAL_SECRET_KEY")

	setString(&c.Metrics.PushgatewayURL, "NBCTL_PUSHGATEWAY_URL")
	setString(&c.Metrics.Job, "NBCTL_PUSHGATEWAY_JOB")
}

func setString(dst *string, envVar string) {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		*dst = v
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, DefaultConfigFile)
}
