// Package config loads shelf's TOML configuration.
//
// # Resolution
//
// Load reads ~/.config/shelf/config.toml (or an explicit path). A missing
// file is not an error; every field has a default. Blank values in the
// file also fall back to defaults. After the file, a .env file in the
// working directory is loaded and the SHELF_* environment variables
// override whatever the file said:
//
//	SHELF_API_URL     backend base URL
//	SHELF_USERNAME    login name
//	SHELF_PASSWORD    password (never read from the file)
//	SHELF_LOG_LEVEL   debug, info, warn, error
//	SHELF_TIMEZONE    IANA zone for "today"
//
// # Defaults
//
//   - api_url: http://127.0.0.1:8080
//   - timezone: UTC
//   - data_dir: ~/.local/share/shelf
//   - log_level: info
//   - poll_seconds: 30
//   - request_timeout_seconds: 10
//
// # Derived Paths
//
//   - CachePath: <data_dir>/shelf.db
//   - LogPath: <data_dir>/shelf.log
//
// Paths beginning with ~ are expanded against the user's home directory and
// made absolute. An unknown timezone is a load error.
package config
