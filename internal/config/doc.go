// Package config loads the immutable process configuration for the
// mail API.
//
// Values come from defaults, then an optional YAML file, then
// environment variables, in that order. The result is validated once
// at startup and passed explicitly to every component; handlers never
// consult the environment themselves.
package config
