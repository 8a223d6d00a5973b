package config

const (
	defaultStorageProvider = "sqlite"
	defaultAPIListen       = ":8082"

	defaultClientAPITarget = "http://localhost:8082"

	defaultPrefetchWorkers = 2

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "inlay.attribution.events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Host: HostConfig{
			Prefetch:        true,
			PrefetchWorkers: defaultPrefetchWorkers,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
