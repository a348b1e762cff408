package domain

import (
	"testing"

	weeklyaggdomain "github.com/smallbiznis/hsekpi/internal/weeklyagg/domain"
	"github.com/stretchr/testify/assert"
)

func TestFillFromSkipsRatesWithoutSamples(t *testing.T) {
	got := Figures{}.FillFrom(weeklyaggdomain.WeeklyAggregate{
		Accidents:         3,
		HseComplianceRate: 0,
	})

	assert.Equal(t, int64(3), got.Accidents)
	assert.Equal(t, 0.0, got.HseComplianceRate)
}

func TestFiguresValidate(t *testing.T) {
	assert.NoError(t, Figures{HseComplianceRate: 100}.Validate())
	assert.ErrorIs(t, Figures{HseComplianceRate: 101}.Validate(), ErrInvalidFigures)
	assert.ErrorIs(t, Figures{HoursWorked: -1}.Validate(), ErrInvalidFigures)
	assert.ErrorIs(t, Figures{Deviations: -2}.Validate(), ErrInvalidFigures)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" Approved ")
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, status)

	_, err = ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
