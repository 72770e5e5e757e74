package config

// SiteConfig holds per-site crawl overrides keyed by host.
// Zero values mean "use the global setting".
type SiteConfig struct {
	// Depth overrides the global expansion ceiling for this site.
	Depth int `yaml:"depth,omitempty"`

	// MaxPages overrides the global page budget for this site.
	MaxPages int `yaml:"maxPages,omitempty"`

	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .pagetree configuration file.
type File struct {
	// Sites maps hostnames to their overrides (e.g. "docs.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults is applied to every site unless overridden per host.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the merged configuration for a host: defaults
// first, then any host-specific values on top.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if site, ok := cf.Sites[host]; ok {
		if site.Depth > 0 {
			result.Depth = site.Depth
		}
		if site.MaxPages > 0 {
			result.MaxPages = site.MaxPages
		}
		if site.UserAgent != "" {
			result.UserAgent = site.UserAgent
		}
	}

	return result
}
