package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	PipelineChanged bool
	NewPipeline     PipelineConfig

	HomeURLChanged bool
	NewHomeURL     string
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart; transcriber
// and browser connection settings still require one.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Pipeline != new.Pipeline {
		d.PipelineChanged = true
		d.NewPipeline = new.Pipeline
	}

	if old.Browser.HomeURL != new.Browser.HomeURL {
		d.HomeURLChanged = true
		d.NewHomeURL = new.Browser.HomeURL
	}

	return d
}

// HasChanges reports whether the diff contains any hot-reloadable change.
func (d ConfigDiff) HasChanges() bool {
	return d.LogLevelChanged || d.PipelineChanged || d.HomeURLChanged
}
