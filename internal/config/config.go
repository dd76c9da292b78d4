package config

// Config holds the nbctl configuration.
type Config struct {
	APIURL string `yaml:"api_url"`
	Token  string `yaml:"token"`

	DefaultTenant  string `yaml:"default_tenant"`
	DefaultSite    string `yaml:"default_site"`
	DefaultCluster string `yaml:"default_cluster"`

	// RoleID is the device role assigned to new VMs. Zero leaves the role unset.
	RoleID int `yaml:"role_id"`

	Allocation Allocation `yaml:"allocation"`
	Journal    Journal    `yaml:"journal"`
	Metrics    Metrics    `yaml:"metrics"`

	Timeouts *Timeouts `yaml:"-"`
}

// Allocation bounds the unique value generators.
type Allocation struct {
	MACAttempts        int    `yaml:"mac_attempts"`
	IdentifierAttempts int    `yaml:"identifier_attempts"`
	SlotMin            int    `yaml:"slot_min"`
	SlotMax            int    `yaml:"slot_max"`
	MACPrefix          string `yaml:"mac_prefix"`
}

// Journal configures archiving of transaction journals to an S3-compatible bucket.
// Archiving is disabled while Bucket is empty.
type Journal struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Enabled reports whether journals should be archived.
func (j Journal) Enabled() bool { return j.Bucket != "" }

// Metrics configures pushing of run metrics to a Prometheus Pushgateway.
type Metrics struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// Enabled reports whether metrics should be pushed.
func (m Metrics) Enabled() bool { return m.PushgatewayURL != "" }

// Overrides carries values given on the command line. Empty fields leave the
// loaded configuration untouched.
type Overrides struct {
	APIURL  string
	Token   string
	Tenant  string
	Site    string
	Cluster string
	RoleID  int
}

// Default returns a configuration populated with built-in defaults.
func Default() *Config {
	return &Config{
		Allocation: Allocation{
			MACAttempts:        DefaultMACAttempts,
			IdentifierAttempts: DefaultIdentifierAttempts,
			SlotMin:            DefaultSlotMin,
			SlotMax:            DefaultSlotMax,
			MACPrefix:          DefaultMACPrefix,
		},
		Journal: Journal{Prefix: DefaultJournalPrefix},
		Metrics: Metrics{Job: DefaultMetricsJob},
	}
}

// ApplyOverrides layers command-line values on top of the configuration.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.Token != "" {
		c.Token = o.Token
	}
	if o.Tenant != "" {
		c.DefaultTenant = o.Tenant
	}
	if o.Site != "" {
		c.DefaultSite = o.Site
	}
	if o.Cluster != "" {
		c.DefaultCluster = o.Cluster
	}
	if o.RoleID != 0 {
		c.RoleID = o.RoleID
	}
}
