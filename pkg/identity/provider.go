// FILE: pkg/identity/provider.go
package identity

import (
	"context"
	"errors"

	"blicktrack-entitlement-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

type contextKey string

const actorKey contextKey = "actor_id"

// WithActor stamps the acting admin's id onto the context. The HTTP layer
// calls this after validating the bearer token.
func WithActor(ctx context.Context, actorId uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey, actorId)
}

// ActorFromContext returns the acting admin's id, if any.
func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	actorId, ok := ctx.Value(actorKey).(uuid.UUID)
	if !ok || actorId == uuid.Nil {
		return uuid.Nil, false
	}
	return actorId, true
}

// ActorOrNil returns the acting admin's id, or uuid.Nil for unattributed
// calls (sweeps, seeds, internal jobs).
func ActorOrNil(ctx context.Context) uuid.UUID {
	actorId, _ := ActorFromContext(ctx)
	return actorId
}

// Provider is the identity collaborator surface the engine consumes.
type Provider interface {
	CurrentActorID(ctx context.Context) (uuid.UUID, error)
}

// ContextProvider reads the actor stamped on the request context by the auth
// middleware.
type ContextProvider struct{}

func NewContextProvider() *ContextProvider {
	return &ContextProvider{}
}

func (ContextProvider) CurrentActorID(ctx context.Context) (uuid.UUID, error) {
	actorId, ok := ActorFromContext(ctx)
	if !ok {
		return uuid.Nil, apperror.NewUpstream("identity", errors.New("no actor on context"))
	}
	return actorId, nil
}
