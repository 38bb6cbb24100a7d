package service

import (
	"context"
	"errors"

	"taxappeal/internal/evidence/providers"
	"taxappeal/pkg/domain"
	dErrors "taxappeal/pkg/domain-errors"
)

// registryError translates a registry failure into a coded domain error.
// The original error stays in the chain.
func (s *Service) registryError(ctx context.Context, pin domain.ParcelID, err error) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if providers.IsNotFound(err) {
		s.logger.DebugContext(ctx, "parcel not found in registry", "pin", pin.String())
		return dErrors.Wrap(err, dErrors.CodeNotFound, "parcel not found")
	}

	s.logger.ErrorContext(ctx, "registry request failed",
		"pin", pin.String(),
		"category", string(providers.GetCategory(err)),
		"error", err,
	)
	switch {
	case errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeInternal, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded), providers.GetCategory(err) == providers.ErrorTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "registry timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeBadGateway, "registry request failed")
	}
}
