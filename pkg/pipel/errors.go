package pipel

import "github.com/pkg/errors"

var (
	ErrAlreadyRun      = errors.New("pipeline has already run")
	ErrSourceMustBeSet = errors.New("source must be set")
	ErrOutputMustBeSet = errors.New("output must be set")
	ErrBatchSize       = errors.New("batch size must be greater than 0")
	ErrWorkerCount     = errors.New("workers must be greater than 0")
	ErrLogInterval     = errors.New("log interval must be greater than 0")
)
