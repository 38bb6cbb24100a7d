package registry

import (
	"context"

	"taxappeal/internal/evidence/models"
)

// FetchEquityComparables returns neighbors of the same class assessed in the
// subject's latest assessment year. They carry an assessed value instead of
// a sale price.
func (c *Client) FetchEquityComparables(ctx context.Context, subject *models.SubjectProperty, tol models.Tolerances, limit int) ([]models.ComparableCandidate, error) {
	latest, ok := subject.LatestAssessment()
	if !ok || subject.Neighborhood == "" {
		return nil, nil
	}

	q := NewQuery().
		Select(assessmentFields...).
		Eq("nbhd", subject.Neighborhood).
		EqInt("year", latest.Year).
		NotEq("pin", subject.PIN.String())
	if subject.Class != "" {
		q.Eq("class", subject.Class)
	}
	q.OrderAsc("pin").Limit(limit)

	var rows []assessmentRow
	if err := c.query(ctx, c.datasets.Assessed, q, &rows); err != nil {
		return nil, err
	}

	candidates := make([]models.ComparableCandidate, 0, len(rows))
	for _, r := range rows {
		av, reported := mergeStages(r)
		if !reported || av.Total == nil {
			continue
		}
		candidates = append(candidates, models.ComparableCandidate{
			Origin:        models.OriginPrimaryRegistry,
			PIN:           r.PIN.String(),
			Class:         r.Class.String(),
			AssessedValue: av.Total,
			Source:        sourceLabel(c.datasets.Assessed),
		})
	}
	return c.attachCharacteristics(ctx, subject, tol, candidates)
}
