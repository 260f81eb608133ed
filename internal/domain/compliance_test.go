package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name                                       string
		inspection, maintenance, document, defect int
		want                                       int
	}{
		{"all perfect", 100, 100, 100, 100, 100},
		{"all zero", 0, 0, 0, 0, 0},
		{"simple mean", 80, 90, 100, 70, 85},
		{"rounds half up", 100, 100, 100, 98, 100}, // 99.5
		{"rounds down", 100, 100, 100, 97, 99},     // 99.25
		{"clamps high", 150, 150, 150, 150, 100},
		{"clamps low", -20, -20, -20, -20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.inspection, tt.maintenance, tt.document, tt.defect))
		})
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	score := gen.IntRange(0, 100)

	properties.Property("permuting sub-scores does not change the result", prop.ForAll(
		func(a, b, c, d int) bool {
			want := Aggregate(a, b, c, d)
			return Aggregate(b, a, d, c) == want &&
				Aggregate(d, c, b, a) == want &&
				Aggregate(c, d, a, b) == want
		},
		score, score, score, score,
	))

	properties.Property("result stays within [0, 100]", prop.ForAll(
		func(a, b, c, d int) bool {
			got := Aggregate(a, b, c, d)
			return got >= 0 && got <= 100
		},
		gen.IntRange(-500, 500), gen.IntRange(-500, 500),
		gen.IntRange(-500, 500), gen.IntRange(-500, 500),
	))

	properties.TestingRun(t)
}

func TestBuildComplianceMetric(t *testing.T) {
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	equipmentID := uuid.New()
	scores := SubScores{Inspection: 90, Maintenance: 80, Document: 100, Defect: 60}

	t.Run("no obligations is valid without next due", func(t *testing.T) {
		m := BuildComplianceMetric(equipmentID, scores, nil, now)

		assert.Equal(t, equipmentID, m.EquipmentID)
		assert.Equal(t, 83, m.OverallScore) // 82.5
		assert.Equal(t, UrgencyValid, m.ExpiryStatus)
		assert.Nil(t, m.NextDueDate)
		assert.Empty(t, m.NextDueItemLabel)
		assert.False(t, m.HasNextDue())
		assert.Equal(t, now, m.LastUpdated)
	})

	t.Run("nearest obligation drives expiry status", func(t *testing.T) {
		obligations := []Obligation{
			{Kind: ObligationCertificate, Label: "Thorough examination", DueDate: now.AddDate(0, 2, 0)},
			{Kind: ObligationMaintenance, Label: "Hydraulic service", DueDate: now.AddDate(0, 0, 5)},
			{Kind: ObligationInspection, Label: "Monthly inspection", DueDate: now.AddDate(0, 0, 20)},
		}

		m := BuildComplianceMetric(equipmentID, scores, obligations, now)

		assert.Equal(t, UrgencyUrgent, m.ExpiryStatus)
		require.NotNil(t, m.NextDueDate)
		assert.Equal(t, now.AddDate(0, 0, 5), *m.NextDueDate)
		assert.Equal(t, "Hydraulic service", m.NextDueItemLabel)
	})

	t.Run("five days overdue is expired", func(t *testing.T) {
		obligations := []Obligation{
			{Kind: ObligationInspection, Label: "Weekly inspection", DueDate: now.AddDate(0, 0, -5)},
			{Kind: ObligationCertificate, Label: "Registration", DueDate: now.AddDate(1, 0, 0)},
		}

		m := BuildComplianceMetric(equipmentID, scores, obligations, now)

		assert.Equal(t, -5, obligations[0].DaysRemaining(now))
		assert.Equal(t, UrgencyExpired, m.ExpiryStatus)
		assert.Equal(t, "Weekly inspection", m.NextDueItemLabel)
	})
}

func TestNearestObligation_TieKeepsFirst(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 10)
	obligations := []Obligation{
		{Label: "first", DueDate: due},
		{Label: "second", DueDate: due},
	}

	nearest, days, ok := NearestObligation(obligations, now)

	assert.True(t, ok)
	assert.Equal(t, 10, days)
	assert.Equal(t, "first", nearest.Label)

	_, _, ok = NearestObligation(nil, now)
	assert.False(t, ok)
}
