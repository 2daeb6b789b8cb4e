// Package config loads the client configuration.
//
// Settings come from a TOML file, by default ~/.config/foamsync/config.toml,
// followed by environment overrides. A missing file is not an error and
// yields the defaults; a malformed file or an invalid value is.
//
//	api_url          = "https://script.google.com/macros/s/.../exec"
//	data_dir         = "~/.local/share/foamsync"
//	log_level        = "info"
//	debounce         = "3s"
//	success_window   = "3s"
//	notification_ttl = "2s"
//	retries          = 2
//	retry_delay      = "1s"
//	request_timeout  = "30s"
//	crew_refresh     = "0s"
//
// An empty api_url runs the client offline: every remote call fails and the
// local cache carries the data. crew_refresh of zero disables periodic
// pulls on crew devices.
//
// FOAMSYNC_API_URL, FOAMSYNC_DATA_DIR and FOAMSYNC_LOG_LEVEL replace the
// matching file keys, and may come from a .env file.
//
// The data directory holds the badger cache (<data_dir>/cache) and the
// application log (<data_dir>/foamsync.log).
package config
