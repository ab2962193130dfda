package config

import "fmt"

// ConfigError reports a failure to read or write the config store
type ConfigError struct {
	Op   string
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ConfigError operations
const (
	OpRead     = "read"
	OpDecode   = "decode"
	OpValidate = "validate"
	OpEncode   = "encode"
	OpWrite    = "write"
)
