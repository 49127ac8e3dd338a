package common

import "errors"

var (
	errJobCrashed = errors.New("job crashed")
)
