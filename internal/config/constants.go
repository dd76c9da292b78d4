package config

// Allocation defaults. The attempt counts and the slot ceiling are
// operational values carried over from the legacy tooling.
const (
	DefaultMACAttempts        = 10
	DefaultIdentifierAttempts = 10
	DefaultSlotMin            = 1
	DefaultSlotMax            = 500
	DefaultMACPrefix          = "52:54:00"
)

// DefaultMetricsJob is the Pushgateway job name used when none is configured.
const DefaultMetricsJob = "nbctl"

// DefaultJournalPrefix is the object key prefix for archived journals.
const DefaultJournalPrefix = "journals/"

// DefaultConfigFile is the file name looked up under the user config directory.
const DefaultConfigFile = "nbctl/config.yaml"
