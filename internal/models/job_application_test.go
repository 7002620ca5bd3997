package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivityForStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status JobStatus
		want   ActivityType
	}{
		{JobApplied, ActivityApplication},
		{JobScreening, ActivityPhoneScreen},
		{JobInterview, ActivityInterview},
		{JobOffer, ActivityOffer},
		{JobRejected, ActivityRejection},
		{JobWithdrawn, ActivityWithdrawal},
	}

	for _, tt := range tests {
		got, ok := ActivityForStatus(tt.status)
		assert.True(t, ok, tt.status)
		assert.Equal(t, tt.want, got, tt.status)
	}

	_, ok := ActivityForStatus("ghosted")
	assert.False(t, ok)
}

func TestStatusForActivity_IsNotTheInverse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		activity ActivityType
		want     JobStatus
		mapped   bool
	}{
		{ActivityPhoneScreen, JobScreening, true},
		{ActivityInterview, JobInterview, true},
		{ActivityOffer, JobOffer, true},
		{ActivityRejection, JobRejected, true},
		{ActivityWithdrawal, JobWithdrawn, true},
		{ActivityApplication, "", false},
		{ActivityFollowUp, "", false},
	}

	for _, tt := range tests {
		got, ok := StatusForActivity(tt.activity)
		assert.Equal(t, tt.mapped, ok, tt.activity)
		assert.Equal(t, tt.want, got, tt.activity)
	}
}

func TestApplicationActivity(t *testing.T) {
	t.Parallel()

	app := &JobApplication{
		Base:            Base{ID: "app-1"},
		CompanyName:     "Acme",
		PositionTitle:   "Engineer",
		ApplicationDate: NewDate(2024, 3, 1),
	}

	act := ApplicationActivity(app)
	assert.Equal(t, ActivityApplication, act.ActivityType)
	assert.Equal(t, "app-1", act.JobApplicationID)
	assert.Equal(t, "Applied for Engineer position at Acme", act.Description)
	assert.Equal(t, "2024-03-01", act.ActivityDate.String())
}

func TestStatusChangeActivity(t *testing.T) {
	t.Parallel()

	act, ok := StatusChangeActivity("app-1", JobInterview, NewDate(2024, 4, 2))
	assert.True(t, ok)
	assert.Equal(t, ActivityInterview, act.ActivityType)
	assert.Equal(t, "Status changed to interview", act.Description)

	_, ok = StatusChangeActivity("app-1", "unknown", Today())
	assert.False(t, ok)
}

func TestEnumValidity(t *testing.T) {
	t.Parallel()

	assert.True(t, ProjectCancelled.Valid())
	assert.False(t, ProjectStatus("archived").Valid())
	assert.True(t, SubprojectPaused.Valid())
	assert.False(t, SubprojectStatus("cancelled").Valid())
	assert.True(t, JobWithdrawn.Valid())
	assert.False(t, JobStatus("ghosted").Valid())
	assert.True(t, ActivityFollowUp.Valid())
	assert.False(t, ActivityType("lunch").Valid())
}
