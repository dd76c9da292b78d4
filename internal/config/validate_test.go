package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.APIURL = "https://netbox.example.com"
	cfg.Token = "secret"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.APIURL = "" }, wantErr: "api_url is required"},
		{name: "relative url", mutate: func(c *Config) { c.APIURL = "netbox/api" }, wantErr: "not an absolute URL"},
		{name: "missing token", mutate: func(c *Config) { c.Token = "" }, wantErr: "token is required"},
		{name: "zero mac attempts", mutate: func(c *Config) { c.Allocation.MACAttempts = 0 }, wantErr: "mac_attempts"},
		{name: "zero uuid attempts", mutate: func(c *Config) { c.Allocation.IdentifierAttempts = 0 }, wantErr: "identifier_attempts"},
		{name: "slot min zero", mutate: func(c *Config) { c.Allocation.SlotMin = 0 }, wantErr: "slot_min"},
		{name: "slot range inverted", mutate: func(c *Config) { c.Allocation.SlotMax = 0 }, wantErr: "slot_max"},
		{name: "mac prefix garbage", mutate: func(c *Config) { c.Allocation.MACPrefix = "zz:00" }, wantErr: "mac_prefix"},
		{name: "mac prefix too long", mutate: func(c *Config) { c.Allocation.MACPrefix = "00:11:22:33:44:55" }, wantErr: "between 1 and 5"},
		{name: "short mac prefix", mutate: func(c *Config) { c.Allocation.MACPrefix = "02" }},
		{
			name: "journal access key without secret",
			mutate: func(c *Config) {
				c.Journal.Bucket = "b"
				c.Journal.AccessKey = "ak"
			},
			wantErr: "secret_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
