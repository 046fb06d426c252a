package commands

import "errors"

var (
	errConflictingModes = errors.New("--offline and --refresh are mutually exclusive")
	errTitleRequired    = errors.New("title required")
)
