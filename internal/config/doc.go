// Package config loads the mergevet configuration.
//
// Settings are merged from three layers, later layers winning:
// built-in defaults, the YAML config file (.mergevet.yaml in the
// repository root by default), and MERGEVET_* environment variables.
// ${VAR} and ${VAR:-default} references in the file are expanded
// from the environment before parsing, so API keys need not be
// written to disk.
package config
