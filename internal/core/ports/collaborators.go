package ports

import (
	"context"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// Confirmer is the synchronous yes/no gate consulted before destructive
// actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// FailureReporter receives fetch and mutation failures. Implementations must
// not block the caller for long and must never panic.
type FailureReporter interface {
	Report(ctx context.Context, report domain.FailureReport)
}

// FailureSink persists failure reports (audit trail).
type FailureSink interface {
	Record(ctx context.Context, report domain.FailureReport) error
}
