package models

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCancelled ProjectStatus = "cancelled"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectPaused, ProjectCancelled:
		return true
	}
	return false
}

// SubprojectStatus has no cancelled state.
type SubprojectStatus string

const (
	SubprojectActive    SubprojectStatus = "active"
	SubprojectCompleted SubprojectStatus = "completed"
	SubprojectPaused    SubprojectStatus = "paused"
)

func (s SubprojectStatus) Valid() bool {
	switch s {
	case SubprojectActive, SubprojectCompleted, SubprojectPaused:
		return true
	}
	return false
}

// Project groups daily entries and weekly reviews. TotalHoursLogged is
// derived from the owner's daily entries and is never written by clients.
type Project struct {
	Base
	UpdatedAt        time.Time     `json:"updatedAt"`
	UserID           string        `gorm:"type:uuid;not null;uniqueIndex:idx_projects_user_name" json:"userId"`
	Name             string        `gorm:"size:255;not null;uniqueIndex:idx_projects_user_name" json:"name"`
	Description      string        `gorm:"type:text" json:"description"`
	Deadline         *Date         `json:"deadline"`
	Status           ProjectStatus `gorm:"size:20;not null;default:active" json:"status"`
	TotalHoursLogged float64       `gorm:"type:numeric(8,2);not null;default:0" json:"totalHoursLogged"`

	Subprojects   []Subproject   `gorm:"foreignKey:ProjectID" json:"subprojects,omitempty"`
	DailyEntries  []DailyEntry   `gorm:"foreignKey:ProjectID" json:"dailyEntries,omitempty"`
	WeeklyReviews []WeeklyReview `gorm:"foreignKey:ProjectID" json:"weeklyReviews,omitempty"`
}

// Subproject is owned through its project.
type Subproject struct {
	Base
	UpdatedAt   time.Time        `json:"updatedAt"`
	ProjectID   string           `gorm:"type:uuid;not null;uniqueIndex:idx_subprojects_project_name" json:"projectId"`
	Name        string           `gorm:"size:255;not null;uniqueIndex:idx_subprojects_project_name" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Status      SubprojectStatus `gorm:"size:20;not null;default:active" json:"status"`
}

// ProjectSummary is the slice of a project embedded in entries and reviews.
type ProjectSummary struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Status           ProjectStatus `json:"status"`
	TotalHoursLogged float64       `json:"totalHoursLogged"`
}

// SubprojectSummary is the slice of a subproject embedded in entries and reviews.
type SubprojectSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (ProjectSummary) TableName() string    { return "projects" }
func (SubprojectSummary) TableName() string { return "subprojects" }
