package models

import "time"

// WeeklyReview is a retrospective for one project and week. A user has at
// most one review per (week start, project).
type WeeklyReview struct {
	Base
	UpdatedAt           time.Time `json:"updatedAt"`
	UserID              string    `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_user_week_project" json:"userId"`
	ProjectID           string    `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_user_week_project" json:"projectId"`
	SubprojectID        *string   `gorm:"type:uuid" json:"subprojectId"`
	WeekStartDate       Date      `gorm:"not null;uniqueIndex:idx_weekly_user_week_project" json:"weekStartDate"`
	WhatShipped         string    `gorm:"type:text;not null" json:"whatShipped"`
	WhatFailedToDeliver string    `gorm:"type:text" json:"whatFailedToDeliver"`
	WhatDistracted      string    `gorm:"type:text" json:"whatDistracted"`
	WhatLearned         string    `gorm:"type:text;not null" json:"whatLearned"`
	HoursSpent          float64   `gorm:"type:numeric(6,2);not null" json:"hoursSpent"`

	Project    *ProjectSummary    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Subproject *SubprojectSummary `gorm:"foreignKey:SubprojectID" json:"subproject,omitempty"`
}

func (WeeklyReview) TableName() string { return "weekly_review_entries" }
