package profile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAllZeros(t *testing.T) {
	p := LoadProfile{DataPointCount: 100}
	p.Validate()
	assert.False(t, p.Valid)
	assert.Equal(t, RejectAllZeros, p.RejectionReason)
}

func TestValidateFlatLine(t *testing.T) {
	p := LoadProfile{DataPointCount: 100}
	for i := range p.WeekdayProfile {
		p.WeekdayProfile[i] = 3.3
		p.WeekendProfile[i] = 3.3
	}
	p.Validate()
	assert.False(t, p.Valid)
	assert.Equal(t, RejectFlatLine, p.RejectionReason)
}

func TestValidateExtremeOutlier(t *testing.T) {
	p := LoadProfile{DataPointCount: 100}
	for i := range p.WeekdayProfile {
		p.WeekdayProfile[i] = float64(i) + 1
	}
	p.WeekdayProfile[12] = 2e7
	p.Validate()
	assert.False(t, p.Valid)
	assert.Equal(t, RejectExtremeOutlier, p.RejectionReason)
}

func TestValidateTooFewPoints(t *testing.T) {
	p := LoadProfile{DataPointCount: 47}
	for i := range p.WeekdayProfile {
		p.WeekdayProfile[i] = float64(i) + 1
	}
	p.Validate()
	assert.False(t, p.Valid)
	assert.Equal(t, RejectTooFewPoints, p.RejectionReason)
}

func TestValidateAccepts(t *testing.T) {
	p := LoadProfile{DataPointCount: 48}
	for i := range p.WeekdayProfile {
		p.WeekdayProfile[i] = float64(i) + 1
	}
	p.Validate()
	assert.True(t, p.Valid)
	assert.Empty(t, p.RejectionReason)
}

func TestValidateOrderAllZerosBeforeTooFew(t *testing.T) {
	// A zeroed profile with too few points reports all_zeros, not
	// too_few_points.
	p := LoadProfile{DataPointCount: 3}
	p.Validate()
	assert.Equal(t, RejectAllZeros, p.RejectionReason)
}

func TestRecordErrorCap(t *testing.T) {
	var s ProcessingStats
	for i := 0; i < 250; i++ {
		s.RecordError("line %d: bad", i)
	}
	assert.Len(t, s.ParseErrors, 100)
	assert.Equal(t, fmt.Sprintf("line %d: bad", 0), s.ParseErrors[0])
}
