package models

import (
	"fmt"
	"time"
)

// JobStatus is the pipeline stage of an application.
type JobStatus string

const (
	JobApplied   JobStatus = "applied"
	JobScreening JobStatus = "screening"
	JobInterview JobStatus = "interview"
	JobOffer     JobStatus = "offer"
	JobRejected  JobStatus = "rejected"
	JobWithdrawn JobStatus = "withdrawn"
)

// JobStatuses lists every status in pipeline order.
var JobStatuses = []JobStatus{JobApplied, JobScreening, JobInterview, JobOffer, JobRejected, JobWithdrawn}

func (s JobStatus) Valid() bool {
	for _, known := range JobStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ActivityType classifies an event on an application's timeline.
type ActivityType string

const (
	ActivityApplication ActivityType = "application"
	ActivityFollowUp    ActivityType = "follow_up"
	ActivityPhoneScreen ActivityType = "phone_screen"
	ActivityInterview   ActivityType = "interview"
	ActivityOffer       ActivityType = "offer"
	ActivityRejection   ActivityType = "rejection"
	ActivityWithdrawal  ActivityType = "withdrawal"
)

func (a ActivityType) Valid() bool {
	switch a {
	case ActivityApplication, ActivityFollowUp, ActivityPhoneScreen, ActivityInterview,
		ActivityOffer, ActivityRejection, ActivityWithdrawal:
		return true
	}
	return false
}

// statusActivities maps a status change to the activity it records.
var statusActivities = map[JobStatus]ActivityType{
	JobApplied:   ActivityApplication,
	JobScreening: ActivityPhoneScreen,
	JobInterview: ActivityInterview,
	JobOffer:     ActivityOffer,
	JobRejected:  ActivityRejection,
	JobWithdrawn: ActivityWithdrawal,
}

// activityStatuses maps a logged activity to the status it implies.
// application and follow_up deliberately have no entry.
var activityStatuses = map[ActivityType]JobStatus{
	ActivityPhoneScreen: JobScreening,
	ActivityInterview:   JobInterview,
	ActivityOffer:       JobOffer,
	ActivityRejection:   JobRejected,
	ActivityWithdrawal:  JobWithdrawn,
}

// ActivityForStatus returns the activity recorded when an application moves to s.
func ActivityForStatus(s JobStatus) (ActivityType, bool) {
	a, ok := statusActivities[s]
	return a, ok
}

// StatusForActivity returns the status an activity of type a moves its application to.
func StatusForActivity(a ActivityType) (JobStatus, bool) {
	s, ok := activityStatuses[a]
	return s, ok
}

// JobApplication tracks one application through the hiring pipeline.
type JobApplication struct {
	Base
	UpdatedAt       time.Time `json:"updatedAt"`
	UserID          string    `gorm:"type:uuid;not null;index" json:"userId"`
	CompanyName     string    `gorm:"size:255;not null" json:"companyName"`
	PositionTitle   string    `gorm:"size:255;not null" json:"positionTitle"`
	JobDescription  string    `gorm:"type:text" json:"jobDescription"`
	ApplicationDate Date      `gorm:"not null;index" json:"applicationDate"`
	Status          JobStatus `gorm:"size:20;not null;default:applied;index" json:"status"`
	ApplicationURL  string    `gorm:"size:2048" json:"applicationUrl"`
	SalaryRange     string    `gorm:"size:100" json:"salaryRange"`
	Location        string    `gorm:"size:255" json:"location"`
	RemoteOption    string    `gorm:"size:50" json:"remoteOption"`
	Notes           string    `gorm:"type:text" json:"notes"`

	Activities []JobActivity `gorm:"foreignKey:JobApplicationID" json:"activities"`
}

// JobActivity is an event on an application's timeline. It carries no updated_at.
type JobActivity struct {
	Base
	JobApplicationID string       `gorm:"type:uuid;not null;index" json:"jobApplicationId"`
	ActivityType     ActivityType `gorm:"size:20;not null" json:"activityType"`
	ActivityDate     Date         `gorm:"not null" json:"activityDate"`
	Description      string       `gorm:"type:text" json:"description"`
	ContactPerson    string       `gorm:"size:255" json:"contactPerson"`
	Notes            string       `gorm:"type:text" json:"notes"`
}

func (JobActivity) TableName() string { return "job_application_activities" }

// ApplicationActivity is the activity recorded when an application is created.
func ApplicationActivity(app *JobApplication) JobActivity {
	return JobActivity{
		JobApplicationID: app.ID,
		ActivityType:     ActivityApplication,
		ActivityDate:     app.ApplicationDate,
		Description:      fmt.Sprintf("Applied for %s position at %s", app.PositionTitle, app.CompanyName),
	}
}

// StatusChangeActivity is the activity recorded when status moves to s.
func StatusChangeActivity(appID string, s JobStatus, on Date) (JobActivity, bool) {
	activityType, ok := ActivityForStatus(s)
	if !ok {
		return JobActivity{}, false
	}
	return JobActivity{
		JobApplicationID: appID,
		ActivityType:     activityType,
		ActivityDate:     on,
		Description:      fmt.Sprintf("Status changed to %s", s),
	}, true
}

// StatusCount is one row of the per-status breakdown.
type StatusCount struct {
	Status JobStatus `json:"status"`
	Count  int64     `json:"count"`
}

// MonthCount is one row of the per-month breakdown, month formatted YYYY-MM.
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// JobStats summarizes a user's applications.
type JobStats struct {
	TotalApplications int64         `json:"totalApplications"`
	StatusStats       []StatusCount `json:"statusStats"`
	MonthlyStats      []MonthCount  `json:"monthlyStats"`
}
