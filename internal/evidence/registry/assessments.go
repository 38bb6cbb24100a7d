package registry

import (
	"context"

	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
)

// assessmentRow holds one tax year with the figures of every review stage.
type assessmentRow struct {
	PIN          value `json:"pin"`
	Year         value `json:"year"`
	Class        value `json:"class"`
	Neighborhood value `json:"nbhd"`

	MailedBuilding    value `json:"mailed_bldg"`
	MailedLand        value `json:"mailed_land"`
	MailedTotal       value `json:"mailed_tot"`
	CertifiedBuilding value `json:"certified_bldg"`
	CertifiedLand     value `json:"certified_land"`
	CertifiedTotal    value `json:"certified_tot"`
	BoardBuilding     value `json:"board_bldg"`
	BoardLand         value `json:"board_land"`
	BoardTotal        value `json:"board_tot"`
}

var assessmentFields = []string{
	"pin", "year", "class", "nbhd",
	"mailed_bldg", "mailed_land", "mailed_tot",
	"certified_bldg", "certified_land", "certified_tot",
	"board_bldg", "board_land", "board_tot",
}

type stageFigures struct {
	stage                 models.AssessmentStage
	land, building, total value
}

// stages lists the row's figures in increasing order of authority.
func (r assessmentRow) stages() []stageFigures {
	return []stageFigures{
		{models.StageMailed, r.MailedLand, r.MailedBuilding, r.MailedTotal},
		{models.StageCertified, r.CertifiedLand, r.CertifiedBuilding, r.CertifiedTotal},
		{models.StageBoard, r.BoardLand, r.BoardBuilding, r.BoardTotal},
	}
}

// mergeStages folds the stages field by field: a later stage overrides an
// earlier one only for the fields it reported.
func mergeStages(r assessmentRow) (models.AssessedValue, bool) {
	var av models.AssessedValue
	reported := false
	for _, s := range r.stages() {
		land, building, total := s.land.Float(), s.building.Float(), s.total.Float()
		if land == nil && building == nil && total == nil {
			continue
		}
		reported = true
		av.Stage = s.stage
		if land != nil {
			av.Land = land
		}
		if building != nil {
			av.Building = building
		}
		if total != nil {
			av.Total = total
		}
	}
	if y := r.Year.Int(); y != nil {
		av.Year = *y
	}
	if av.Total != nil {
		mv := *av.Total * MarketMultiplier(av.Year)
		av.MarketValue = &mv
	}
	return av, reported
}

// FetchAssessments returns every assessed year for pin, newest first. Years
// where no stage reported a figure are skipped.
func (c *Client) FetchAssessments(ctx context.Context, pin domain.ParcelID) ([]models.AssessedValue, error) {
	q := NewQuery().
		Select(assessmentFields...).
		Eq("pin", pin.String()).
		OrderDesc("year").
		Limit(100)

	var rows []assessmentRow
	if err := c.query(ctx, c.datasets.Assessed, q, &rows); err != nil {
		return nil, err
	}

	out := make([]models.AssessedValue, 0, len(rows))
	seenYears := make(map[int]struct{}, len(rows))
	for _, r := range rows {
		av, ok := mergeStages(r)
		if !ok {
			continue
		}
		if _, dup := seenYears[av.Year]; dup {
			continue
		}
		seenYears[av.Year] = struct{}{}
		out = append(out, av)
	}
	return out, nil
}
