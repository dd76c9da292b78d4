package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required (flag --api-url or NETBOX_API_URL)")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url %q is not an absolute URL", c.APIURL)
	}
	if c.Token == "" {
		return fmt.Errorf("token is required (flag --token or NETBOX_TOKEN)")
	}

	if err := c.Allocation.validate(); err != nil {
		return fmt.Errorf("allocation validation failed: %w", err)
	}

	if c.Journal.Enabled() && c.Journal.AccessKey != "" && c.Journal.SecretKey == "" {
		return fmt.Errorf("journal secret_key is required when access_key is set")
	}

	return nil
}

func (a Allocation) validate() error {
	if a.MACAttempts < 1 {
		return fmt.Errorf("mac_attempts must be at least 1, got %d", a.MACAttempts)
	}
	if a.IdentifierAttempts < 1 {
		return fmt.Errorf("identifier_attempts must be at least 1, got %d", a.IdentifierAttempts)
	}
	if a.SlotMin < 1 {
		return fmt.Errorf("slot_min must be at least 1, got %d", a.SlotMin)
	}
	if a.SlotMax < a.SlotMin {
		return fmt.Errorf("slot_max (%d) must not be below slot_min (%d)", a.SlotMax, a.SlotMin)
	}
	return validateMACPrefix(a.MACPrefix)
}

// validateMACPrefix accepts one to five colon separated octets.
func validateMACPrefix(prefix string) error {
	octets := strings.Split(prefix, ":")
	if prefix == "" || len(octets) > 5 {
		return fmt.Errorf("mac_prefix %q must have between 1 and 5 octets", prefix)
	}
	padded := prefix + strings.Repeat(":00", 6-len(octets))
	if _, err := net.ParseMAC(padded); err != nil {
		return fmt.Errorf("mac_prefix %q is invalid: %w", prefix, err)
	}
	return nil
}
