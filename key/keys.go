// Package key defines the configuration identifiers.
package key

// Descriptor providers.
const (
	ProvidersDefault = "providers.default"
)

// Search.
const (
	SearchQuerySuggestions = "search.query_suggestions"
)

// Catalog API.
const (
	CatalogBaseURL      = "catalog.base_url"
	CatalogMediaBaseURL = "catalog.media_base_url"
	CatalogCacheTTL     = "catalog.cache_ttl"
	CatalogSearchLimit  = "catalog.search_limit"
)

// Media element.
const (
	Player = "player.default"
)

// Playback controller.
const (
	PlaybackNativeManifest = "playback.native_manifest"
)

// Streaming engine. Durations are in seconds unless the key says otherwise.
const (
	EngineBackBufferLength     = "engine.back_buffer_length"
	EngineMaxBufferLength      = "engine.max_buffer_length"
	EngineMaxBufferSize        = "engine.max_buffer_size"
	EngineCapLevelToPlayerSize = "engine.cap_level_to_player_size"
	EngineStartLevel           = "engine.start_level"
	EngineManifestMaxRetry     = "engine.manifest_max_retry"
	EngineLevelMaxRetry        = "engine.level_max_retry"
	EngineRetryDelay           = "engine.retry_delay"
	EngineLoadTimeout          = "engine.load_timeout"
)

// Icons.
const (
	IconsVariant = "icons.variant"
)

// Logging.
const (
	LogsWrite      = "logs.write"
	LogsLevel      = "logs.level"
	LogsJson       = "logs.json"
	LogsMaxSize    = "logs.max_size"
	LogsMaxBackups = "logs.max_backups"
)

// CLI behaviour outside the TUI.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
