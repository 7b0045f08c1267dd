// Package config loads rendir's settings from the embedded defaults, the
// user's config file, RENDIR_* environment variables and command line flags,
// in that order of precedence.
package config
