// Package config loads coverd configuration.
//
// Configuration comes from one YAML file, then COVERFORGE_* environment
// variables override individual keys. Secret values (the SMTP password)
// may be written as ${VAR} or secretref:<provider>:<name> and are resolved
// by Resolve, never at parse time.
package config
