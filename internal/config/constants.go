package config

// Lua schema field names and globals
const (
	luaGlobalBrowser        = "browser"
	luaFieldChannel         = "channel"
	luaFieldCacheDir        = "cache_dir"
	luaFieldChromePath      = "chrome_path"
	luaFieldLaunchArgs      = "launch_args"
	luaFieldNoSandbox       = "no_sandbox"
	luaFieldDebugPort       = "debug_port"
	luaFieldMaxRetries      = "max_connection_retries"
	luaFieldDownloadBaseURL = "download_base_url"
	luaFieldVersionsURL     = "versions_url"
)

// Environment variables
const (
	EnvConfigFile = "BROWSERCTL_CONFIG"
	EnvCacheDir   = "BROWSERCTL_CACHE_DIR"
	EnvChromePath = "CHROME_PATH"
)

// Limits
const (
	MaxLaunchArgs           = 64
	MaxConnectionRetryLimit = 1000
)
