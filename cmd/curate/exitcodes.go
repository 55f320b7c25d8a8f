package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no project, invalid config)
	ExitDataError   = 3 // Data error (malformed input, validation failure)
	ExitAPIError    = 4 // Remote service error (rate limit, network, bad response)
	ExitAuthError   = 5 // Missing or rejected neurostore token
)
