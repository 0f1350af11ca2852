package repository

import (
	"context"

	"SectorPulse/internal/domain/models"
	domrepo "SectorPulse/internal/domain/repository"
)

// NoopPublisher satisfies the Publisher port when the warehouse backend is
// active and no stream is configured.
type NoopPublisher struct{}

func NewNoopPublisher() domrepo.Publisher { return NoopPublisher{} }

func (NoopPublisher) PublishReturns(context.Context, []models.ReturnRecord) error { return nil }

func (NoopPublisher) Close() error { return nil }
