// Package config loads runtime configuration for the studysync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/-config or STUDYSYNC_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-api string       backend REST base URL
//	-key string       identity provider API key
//	-timeout duration per-request timeout, e.g. 15s
//	-db string        path of the local sqlite database
//	-downloads string directory for downloaded exams
//	-lang string      CLI language (tr, en)
//	-log-level string debug, info, warn, error
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "15s" or integer
// nanoseconds. Keys missing from the file keep their previous value:
//
//	{
//	  "api_base_url": "https://api.example.com/api/v1/",
//	  "identity_api_key": "AIza...",
//	  "request_timeout": "15s",
//	  "page_size": 20,
//	  "download_dir": "~/StudySync",
//	  "s3_bucket": "exams",
//	  "s3_endpoint": "http://127.0.0.1:9000",
//	  "log_backend": "zap",
//	  "lang": "tr"
//	}
package config
