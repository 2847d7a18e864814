package ports

import (
	"context"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// AuthEventRecorder accepts audit events for asynchronous delivery.
// Record must not block the caller on the persistence layer.
type AuthEventRecorder interface {
	Record(event domain.AuthEvent)
}

// AuthEventRepository persists audit events.
type AuthEventRepository interface {
	InsertEvent(ctx context.Context, event domain.AuthEvent) error
}
