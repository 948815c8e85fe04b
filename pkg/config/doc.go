// Package config loads and validates the hub's YAML configuration.
//
// Loading starts from [DefaultConfig] and overlays the file on top, so
// a partial file only needs the keys it changes. Unknown keys are
// rejected to catch typos early.
//
// The deprecated accounts block carries statically configured ClimaCloud
// credentials. It is consumed once at startup by the legacy import flow;
// the import itself raises the deprecation notices, loading the file
// does not.
package config
