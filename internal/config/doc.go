// Package config holds pagetree's runtime configuration.
//
// Configuration is a single flat struct populated from CLI flags (and
// interactive prompts), optionally layered with per-site overrides from a
// .pagetree YAML file. It is passed explicitly through the application;
// there is no global configuration state.
package config
