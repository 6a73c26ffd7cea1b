package usecase

import (
	"context"

	"go-contact-review-backend/internal/domain"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]any
}

type healthUsecase struct {
	store   domain.SessionRepository
	backend string
	// ping probes the store backend; nil for backends with nothing to probe.
	ping func(ctx context.Context) error
}

func NewHealthUsecase(store domain.SessionRepository, backend string, ping func(ctx context.Context) error) HealthUsecase {
	return &healthUsecase{store: store, backend: backend, ping: ping}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]any {
	status := map[string]any{
		"status": "healthy",
		"store":  u.backend,
	}
	if u.ping != nil {
		if err := u.ping(ctx); err != nil {
			status["status"] = "degraded"
			status["store_error"] = err.Error()
		}
	}
	if n, err := u.store.Len(ctx); err == nil {
		status["sessions"] = n
	}
	return status
}
