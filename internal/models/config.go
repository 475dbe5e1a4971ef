package models

import "time"

// ClientConfig contains runtime options shared by provider clients.
type ClientConfig struct {
	Timeout       time.Duration
	RetryAttempts int
	RetryBase     time.Duration

	HeadHunterURL       string
	HeadHunterUserAgent string

	SuperJobURL       string
	SuperJobUserAgent string
	SuperJobAppID     string
}
