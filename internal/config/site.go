package config

// SiteConfig holds per-domain configuration overrides.
// This allows customizing crawl behavior for individual seed domains.
type SiteConfig struct {
	// Cookie is an HTTP cookie to use when crawling this domain.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this domain.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global crawl depth for this domain.
	// If zero, the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global per-domain page budget.
	// If zero, the global MaxPagesPerDomain is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// DomainRate overrides the per-domain request budget.
	// If zero, the global DomainRate is used.
	DomainRate int `yaml:"domainRate,omitempty"`
}

// File represents the structure of the .contactsleuth configuration file.
type File struct {
	// Sites maps domains to their per-domain configurations.
	// Keys should be the bare hostname (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all domains
	// unless overridden in the domain-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific domain.
// It merges the domain-specific configuration with defaults.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	// Start with defaults. The header map is copied rather than
	// aliased so that merging never mutates cf.Defaults.
	result := cf.Defaults
	result.Headers = nil
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	// Override with domain-specific configuration if present
	if siteConfig, ok := cf.Sites[domain]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.DomainRate != 0 {
			result.DomainRate = siteConfig.DomainRate
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string, len(siteConfig.Headers))
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}
