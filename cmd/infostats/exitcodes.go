package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (missing or invalid config file)
	ExitDataError    = 3 // Data error (malformed BibTeX, unreadable records)
	ExitNetworkError = 4 // Enrichment could not reach the publisher
)
