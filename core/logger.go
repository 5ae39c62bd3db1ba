package core

// Logger is implemented by the application loggers.
// args may carry errors, extra data (map[string]interface{}) and the session of the logged-in user.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
