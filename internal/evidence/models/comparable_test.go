package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxappeal/pkg/geo"
)

func ptr[T any](v T) *T { return &v }

func TestDerive(t *testing.T) {
	subject := &SubjectProperty{Coordinates: &geo.Coordinates{Lat: 41.88, Lon: -87.63}}

	t.Run("price per area needs a positive price and area", func(t *testing.T) {
		tests := []struct {
			name  string
			price *float64
			area  *float64
			want  *float64
		}{
			{"both positive", ptr(300000.0), ptr(1200.0), ptr(250.0)},
			{"zero price", ptr(0.0), ptr(1200.0), nil},
			{"missing area", ptr(300000.0), nil, nil},
			{"zero area", ptr(300000.0), ptr(0.0), nil},
			{"missing price", nil, ptr(1200.0), nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				m := Derive(subject, ComparableCandidate{SalePrice: tt.price, LivingArea: tt.area}, false)
				if tt.want == nil {
					assert.Nil(t, m.PricePerUnitArea)
					return
				}
				require.NotNil(t, m.PricePerUnitArea)
				assert.Equal(t, *tt.want, *m.PricePerUnitArea)
			})
		}
	})

	t.Run("distance from the subject", func(t *testing.T) {
		m := Derive(subject, ComparableCandidate{Coordinates: &geo.Coordinates{Lat: 41.90, Lon: -87.65}}, false)
		require.NotNil(t, m.DistanceFromSubject)
		assert.Greater(t, *m.DistanceFromSubject, 0.0)
		assert.False(t, math.IsInf(*m.DistanceFromSubject, 0))
	})

	t.Run("missing coordinates give no distance", func(t *testing.T) {
		assert.Nil(t, Derive(subject, ComparableCandidate{}, false).DistanceFromSubject)
		assert.Nil(t, Derive(&SubjectProperty{}, ComparableCandidate{Coordinates: &geo.Coordinates{Lat: 41.9, Lon: -87.6}}, false).DistanceFromSubject)
		assert.Nil(t, Derive(nil, ComparableCandidate{}, false).DistanceFromSubject)
	})

	t.Run("normalizes the pin and keeps the flag", func(t *testing.T) {
		m := Derive(subject, ComparableCandidate{PIN: "17-04-217-033-1013"}, true)
		assert.Equal(t, "17042170331013", m.PIN)
		assert.True(t, m.InBothSources)
	})
}

func TestFillMissing(t *testing.T) {
	c := ComparableCandidate{LivingArea: ptr(1200.0)}
	filled := c.FillMissing(Characteristics{LivingArea: ptr(1250.0), YearBuilt: ptr(1925), Class: "203"})

	assert.True(t, filled)
	assert.Equal(t, 1200.0, *c.LivingArea)
	assert.Equal(t, 1925, *c.YearBuilt)
	assert.Equal(t, "203", c.Class)

	assert.False(t, c.FillMissing(Characteristics{LivingArea: ptr(999.0)}))
}

func TestEnrichmentEntryRichness(t *testing.T) {
	e := &EnrichmentEntry{LivingArea: ptr(1.0), YearBuilt: ptr(1)}
	assert.Equal(t, 2, e.Richness())

	e.RawPayload = []byte(`{}`)
	assert.Equal(t, 3, e.Richness())
	assert.Equal(t, 2, e.WithoutPayload().Richness())
	assert.True(t, e.HasFullPayload())

	var nilEntry *EnrichmentEntry
	assert.Zero(t, nilEntry.Richness())
	assert.False(t, nilEntry.HasData())
}
