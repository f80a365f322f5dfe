package pipeline

import (
	"net/http"

	"github.com/linearflow/linearflow/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("PIPELINE")

// Error codes
var (
	CodeTransitionInFlight     = ErrRegistry.Register("TRANSITION_IN_FLIGHT", errx.TypeConflict, http.StatusConflict, "A stage change for this record is still in flight")
	CodePersistenceUnavailable = ErrRegistry.Register("PERSISTENCE_UNAVAILABLE", errx.TypeExternal, http.StatusBadGateway, "Could not save the stage change, please retry")
)

// Helper functions
func ErrTransitionInFlight() *errx.Error {
	return ErrRegistry.New(CodeTransitionInFlight)
}

func ErrPersistenceUnavailable() *errx.Error {
	return ErrRegistry.New(CodePersistenceUnavailable)
}
