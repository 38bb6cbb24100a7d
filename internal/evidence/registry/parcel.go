package registry

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
)

// FetchParcel resolves the full subject record. The location lookup runs
// first; characteristics, assessments and tax rate then run in parallel. Any
// failure fails the whole fetch, so callers never see a partial subject.
func (c *Client) FetchParcel(ctx context.Context, pin domain.ParcelID) (*models.SubjectProperty, error) {
	start := time.Now()
	loc, err := c.FetchLocation(ctx, pin)
	if err != nil {
		return nil, err
	}

	var (
		chars       models.Characteristics
		assessments []models.AssessedValue
		taxRate     *float64
		taxRateYear int
	)

	hintYear := loc.Year
	if hintYear == 0 {
		hintYear = c.now().Year()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chars, err = c.FetchCharacteristics(gctx, pin)
		if err != nil {
			return fmt.Errorf("characteristics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assessments, err = c.FetchAssessments(gctx, pin)
		if err != nil {
			return fmt.Errorf("assessments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		taxRate, taxRateYear, err = c.FetchTaxRate(gctx, loc.TaxCode, hintYear)
		if err != nil {
			return fmt.Errorf("tax rate: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	class := loc.Class
	if class == "" {
		class = chars.Class
	}
	subject := &models.SubjectProperty{
		PIN:             pin,
		Address:         loc.Address,
		Class:           class,
		Neighborhood:    loc.Neighborhood,
		Township:        loc.Township,
		TaxCode:         loc.TaxCode,
		Characteristics: chars,
		Assessments:     assessments,
		TaxRate:         taxRate,
		TaxRateYear:     taxRateYear,
		Coordinates:     loc.Coordinates,
		RefreshedAt:     c.now(),
	}

	c.logger.DebugContext(ctx, "registry parcel fetched",
		"pin", pin.String(),
		"assessment_years", len(assessments),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return subject, nil
}
