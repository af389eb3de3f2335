package config

const (
	// DefaultBaseURL is the public ServeRest instance
	DefaultBaseURL = "https://serverest.dev"
	// DefaultTimeout matches the suite's request timeout in milliseconds
	DefaultTimeout = 10000
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   DefaultTimeout,
		Retries:   0,
		RateLimit: 0,
		Reporters: []string{"console"},
		Bail:      BoolPtr(false),
		Verbose:   BoolPtr(false),
		NoColor:   BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.BaseURL == defaults.BaseURL &&
		c.Timeout == defaults.Timeout &&
		c.Retries == defaults.Retries &&
		c.RateLimit == defaults.RateLimit &&
		len(c.Headers) == 0 &&
		c.Fixtures == "" &&
		c.OutputDir == defaults.OutputDir &&
		c.GetBail() == defaults.GetBail() &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor() &&
		c.GetInsecure() == defaults.GetInsecure()
}
