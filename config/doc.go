// Package config loads ensemblops settings from a file, the environment and
// secret references, and maps them onto the component configurations.
//
// Files may be YAML (.yaml, .yml), TOML (.toml) or JSON (.json). Fields left
// out of the file keep their Default values. Durations are strings such as
// "500ms" or "24h". Environment variables prefixed ENSEMBLOPS_ override a
// handful of commonly tuned fields, and string values holding ${VAR} or
// secretref: references are resolved by ResolveSecrets.
package config
