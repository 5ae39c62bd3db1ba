package apps

import "fmt"

// ConfigError reports a missing or invalid setting.
type ConfigError struct {
	Key string
	msg string
}

func NewConfigError(key, msg string) *ConfigError {
	return &ConfigError{Key: key, msg: msg}
}

func (err *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", err.Key, err.msg)
}
