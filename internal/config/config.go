package config

import (
	"os"
	"strconv"
	"time"
)

var (
	// Drive API settings
	DriveAPIKey      = os.Getenv("DRIVE_API_KEY")
	DriveAPIEndpoint = os.Getenv("DRIVE_API_ENDPOINT") // override for tests

	// Upstream endpoint bases. Tests point these at local servers.
	DownloadBase    = getEnvWithDefault("DOWNLOAD_BASE", "https://drive.usercontent.google.com/download")
	AltDownloadBase = getEnvWithDefault("ALT_DOWNLOAD_BASE", "https://drive.google.com/uc")
	ExportBase      = getEnvWithDefault("EXPORT_BASE", "https://docs.google.com")
	PrintBase       = getEnvWithDefault("PRINT_BASE", "https://drive.google.com/viewer/print")
	PreviewBase     = getEnvWithDefault("PREVIEW_BASE", "https://drive.google.com/file")
	ViewerBase      = getEnvWithDefault("VIEWER_BASE", "https://drive.google.com/file")

	// Retrieval tuning
	UpstreamTimeout     = getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second)
	MaxRedirects        = getEnvInt("MAX_REDIRECTS", 10)
	InterstitialCeiling = getEnvInt64("INTERSTITIAL_CEILING_BYTES", 1<<20)
	MinPayloadBytes     = getEnvInt64("MIN_PAYLOAD_BYTES", 1024)
	UserAgent           = getEnvWithDefault("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) drivegate/1.0")

	// When every content strategy fails, redirect the caller to the upstream
	// viewer instead of returning a structured error.
	ViewerRedirectFallback = getEnvWithDefault("VIEWER_REDIRECT_FALLBACK", "true") == "true"

	// Metadata cache
	ValkeyHost       = os.Getenv("VALKEY_HOST")
	ValkeyPort       = getEnvInt("VALKEY_PORT", 6379)
	MetadataCacheTTL = getEnvDuration("METADATA_CACHE_TTL", 5*time.Minute)

	// Retrieval history
	HistoryDBPath = getEnvWithDefault("HISTORY_DB_PATH", "drivegate-history.db")

	// Inbound auth (optional). API is open when AUTH0_DOMAIN is unset.
	Auth0Domain   = os.Getenv("AUTH0_DOMAIN")
	Auth0Audience = os.Getenv("AUTH0_AUDIENCE")
)

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// MetadataFields is the field selector sent with every metadata probe.
const MetadataFields = "id, name, mimeType, size, capabilities(canDownload), permissions(type, role)"
