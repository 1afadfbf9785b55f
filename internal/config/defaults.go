package config

const (
	defaultDataDir      = "~/.local/share/bridge"
	defaultLogDir       = "~/.local/share/bridge/logs"
	defaultAPIBind      = "127.0.0.1:7031"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultNtfyTimeout  = 10
	defaultTickInterval = 60
)

// DefaultWorkflowOrder returns the stage sequence used when a pod is created
// without an explicit workflow order.
func DefaultWorkflowOrder() []string {
	return []string{"Product", "Design", "Frontend", "Backend", "QA", "Go live"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		DataDir:            defaultDataDir,
		LogDir:             defaultLogDir,
		APIBind:            defaultAPIBind,
		LogFormat:          defaultLogFormat,
		LogLevel:           defaultLogLevel,
		NtfyRequestTimeout: defaultNtfyTimeout,
		TickInterval:       defaultTickInterval,
		DefaultWorkflow:    DefaultWorkflowOrder(),
	}
}
