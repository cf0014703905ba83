package uow

import (
	"context"

	"insurance-portal/internal/domain/session"
)

type Repos struct {
	Sessions session.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
