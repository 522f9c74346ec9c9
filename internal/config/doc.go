// Package config provides configuration structures and utilities for
// ContactSleuth. It defines the main options for crawling seed domains,
// rate limiting, extraction, and report generation preferences.
package config
