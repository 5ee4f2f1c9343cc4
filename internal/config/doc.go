// Package config loads browserctl settings from an optional Lua file and
// the environment.
//
// # Config File
//
// The file is plain Lua executed in a sandboxed VM (no os, io, require or
// load). It must define a global browser table; every field is optional:
//
//	browser = {
//	    channel = "stable",                -- or a pinned build such as "131.0.6778.85"
//	    cache_dir = "~/.cache/browserctl",
//	    chrome_path = platform.is_macos
//	        and "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
//	        or nil,
//	    launch_args = { "--window-size=1280,720" },
//	    no_sandbox = platform.is_linux,
//	    debug_port = 9222,                 -- 0 picks a free port
//	    max_connection_retries = 50,
//	    download_base_url = "https://storage.googleapis.com/chrome-for-testing-public",
//	    versions_url = "https://googlechromelabs.github.io/chrome-for-testing/last-known-good-versions.json",
//	}
//
// A read-only platform table describes the host, so one file can serve
// several machines. See platform.InjectPlatformTable for its fields.
//
// # Precedence
//
// Built-in defaults, then the file (BROWSERCTL_CONFIG, or
// browserctl/browserctl.lua under the user config directory), then the
// environment: BROWSERCTL_CACHE_DIR and CHROME_PATH.
//
// # Proxies
//
// ApplyProxyEnv copies npm-style proxy settings (npm_config_proxy and
// friends) into HTTPS_PROXY, HTTP_PROXY and NO_PROXY when those are unset.
// It must run before the first HTTP request, because net/http reads the
// proxy environment only once.
package config
