package models

import (
	"math"
	"time"
)

// DailyEntry records one day of work on a project.
type DailyEntry struct {
	Base
	UpdatedAt         time.Time `json:"updatedAt"`
	UserID            string    `gorm:"type:uuid;not null;index" json:"userId"`
	ProjectID         string    `gorm:"type:uuid;not null;index" json:"projectId"`
	SubprojectID      *string   `gorm:"type:uuid;index" json:"subprojectId"`
	EntryDate         Date      `gorm:"not null;index" json:"entryDate"`
	DailyFocus        bool      `gorm:"not null;default:false" json:"dailyFocus"`
	WhatShippedToday  string    `gorm:"type:text;not null" json:"whatShippedToday"`
	WhatSlowedDown    string    `gorm:"type:text" json:"whatSlowedDown"`
	WhatToFixTomorrow string    `gorm:"type:text" json:"whatToFixTomorrow"`
	HoursSpent        float64   `gorm:"type:numeric(6,2);not null" json:"hoursSpent"`
	ProofLink         string    `gorm:"size:2048" json:"proofLink"`

	Project    *ProjectSummary    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Subproject *SubprojectSummary `gorm:"foreignKey:SubprojectID" json:"subproject,omitempty"`
	ProofFiles []ProofFile        `gorm:"foreignKey:DailyEntryID" json:"proofFiles"`
}

func (DailyEntry) TableName() string { return "daily_execution_entries" }

// HasProof reports whether the entry carries a link or at least one stored file.
func (e *DailyEntry) HasProof() bool {
	return e.ProofLink != "" || len(e.ProofFiles) > 0
}

// ProofFile is an uploaded artifact attached to a daily entry. It is never updated.
type ProofFile struct {
	Base
	DailyEntryID string `gorm:"column:daily_execution_entry_id;type:uuid;not null;index" json:"dailyEntryId"`
	FileName     string `gorm:"size:255;not null" json:"fileName"`
	FileType     string `gorm:"size:100;not null" json:"fileType"`
	FileSize     int64  `gorm:"not null" json:"fileSize"`
	FileURL      string `gorm:"size:1024;not null" json:"fileUrl"`
	StoragePath  string `gorm:"size:1024;not null" json:"-"`
	PreviewURL   string `gorm:"size:1024" json:"previewUrl,omitempty"`
	PreviewPath  string `gorm:"size:1024" json:"-"`
}

// StoredPaths lists every artifact on disk that belongs to the file.
func (f *ProofFile) StoredPaths() []string {
	paths := []string{f.StoragePath}
	if f.PreviewPath != "" {
		paths = append(paths, f.PreviewPath)
	}
	return paths
}

// RoundHours keeps two decimal places, matching the numeric column scale.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
