package models

// Patch types carry the fields of a partial update. A nil pointer keeps the
// stored value. For optional text fields an empty string clears the value;
// for required fields the service rejects empty values before Apply runs.

// ProjectPatch updates a project.
type ProjectPatch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Deadline    *Date          `json:"deadline"`
	Status      *ProjectStatus `json:"status"`
}

func (p ProjectPatch) Apply(proj *Project) {
	if p.Name != nil {
		proj.Name = *p.Name
	}
	if p.Description != nil {
		proj.Description = *p.Description
	}
	if p.Deadline != nil {
		if p.Deadline.IsZero() {
			proj.Deadline = nil
		} else {
			d := *p.Deadline
			proj.Deadline = &d
		}
	}
	if p.Status != nil {
		proj.Status = *p.Status
	}
}

// SubprojectPatch updates a subproject.
type SubprojectPatch struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Status      *SubprojectStatus `json:"status"`
}

func (p SubprojectPatch) Apply(sp *Subproject) {
	if p.Name != nil {
		sp.Name = *p.Name
	}
	if p.Description != nil {
		sp.Description = *p.Description
	}
	if p.Status != nil {
		sp.Status = *p.Status
	}
}

// DailyEntryPatch updates a daily entry. An empty SubprojectID detaches the subproject.
type DailyEntryPatch struct {
	ProjectID         *string  `json:"projectId" form:"projectId"`
	SubprojectID      *string  `json:"subprojectId" form:"subprojectId"`
	EntryDate         *Date    `json:"entryDate" form:"entryDate"`
	DailyFocus        *bool    `json:"dailyFocus" form:"dailyFocus"`
	WhatShippedToday  *string  `json:"whatShippedToday" form:"whatShippedToday"`
	WhatSlowedDown    *string  `json:"whatSlowedDown" form:"whatSlowedDown"`
	WhatToFixTomorrow *string  `json:"whatToFixTomorrow" form:"whatToFixTomorrow"`
	HoursSpent        *float64 `json:"hoursSpent" form:"hoursSpent"`
	ProofLink         *string  `json:"proofLink" form:"proofLink"`
}

func (p DailyEntryPatch) Apply(e *DailyEntry) {
	if p.ProjectID != nil {
		// A subproject never outlives a move to another project.
		if *p.ProjectID != e.ProjectID {
			e.SubprojectID = nil
		}
		e.ProjectID = *p.ProjectID
	}
	if p.SubprojectID != nil {
		e.SubprojectID = optionalID(*p.SubprojectID)
	}
	if p.EntryDate != nil {
		e.EntryDate = *p.EntryDate
	}
	if p.DailyFocus != nil {
		e.DailyFocus = *p.DailyFocus
	}
	if p.WhatShippedToday != nil {
		e.WhatShippedToday = *p.WhatShippedToday
	}
	if p.WhatSlowedDown != nil {
		e.WhatSlowedDown = *p.WhatSlowedDown
	}
	if p.WhatToFixTomorrow != nil {
		e.WhatToFixTomorrow = *p.WhatToFixTomorrow
	}
	if p.HoursSpent != nil {
		e.HoursSpent = RoundHours(*p.HoursSpent)
	}
	if p.ProofLink != nil {
		e.ProofLink = *p.ProofLink
	}
}

// WeeklyReviewPatch updates a weekly review. An empty SubprojectID detaches the subproject.
type WeeklyReviewPatch struct {
	ProjectID           *string  `json:"projectId"`
	SubprojectID        *string  `json:"subprojectId"`
	WeekStartDate       *Date    `json:"weekStartDate"`
	WhatShipped         *string  `json:"whatShipped"`
	WhatFailedToDeliver *string  `json:"whatFailedToDeliver"`
	WhatDistracted      *string  `json:"whatDistracted"`
	WhatLearned         *string  `json:"whatLearned"`
	HoursSpent          *float64 `json:"hoursSpent"`
}

func (p WeeklyReviewPatch) Apply(r *WeeklyReview) {
	if p.ProjectID != nil {
		if *p.ProjectID != r.ProjectID {
			r.SubprojectID = nil
		}
		r.ProjectID = *p.ProjectID
	}
	if p.SubprojectID != nil {
		r.SubprojectID = optionalID(*p.SubprojectID)
	}
	if p.WeekStartDate != nil {
		r.WeekStartDate = *p.WeekStartDate
	}
	if p.WhatShipped != nil {
		r.WhatShipped = *p.WhatShipped
	}
	if p.WhatFailedToDeliver != nil {
		r.WhatFailedToDeliver = *p.WhatFailedToDeliver
	}
	if p.WhatDistracted != nil {
		r.WhatDistracted = *p.WhatDistracted
	}
	if p.WhatLearned != nil {
		r.WhatLearned = *p.WhatLearned
	}
	if p.HoursSpent != nil {
		r.HoursSpent = RoundHours(*p.HoursSpent)
	}
}

// JobApplicationPatch updates an application. Status side effects are handled by the service.
type JobApplicationPatch struct {
	CompanyName     *string    `json:"companyName"`
	PositionTitle   *string    `json:"positionTitle"`
	JobDescription  *string    `json:"jobDescription"`
	ApplicationDate *Date      `json:"applicationDate"`
	Status          *JobStatus `json:"status"`
	ApplicationURL  *string    `json:"applicationUrl"`
	SalaryRange     *string    `json:"salaryRange"`
	Location        *string    `json:"location"`
	RemoteOption    *string    `json:"remoteOption"`
	Notes           *string    `json:"notes"`
}

func (p JobApplicationPatch) Apply(app *JobApplication) {
	if p.CompanyName != nil {
		app.CompanyName = *p.CompanyName
	}
	if p.PositionTitle != nil {
		app.PositionTitle = *p.PositionTitle
	}
	if p.JobDescription != nil {
		app.JobDescription = *p.JobDescription
	}
	if p.ApplicationDate != nil {
		app.ApplicationDate = *p.ApplicationDate
	}
	if p.Status != nil {
		app.Status = *p.Status
	}
	if p.ApplicationURL != nil {
		app.ApplicationURL = *p.ApplicationURL
	}
	if p.SalaryRange != nil {
		app.SalaryRange = *p.SalaryRange
	}
	if p.Location != nil {
		app.Location = *p.Location
	}
	if p.RemoteOption != nil {
		app.RemoteOption = *p.RemoteOption
	}
	if p.Notes != nil {
		app.Notes = *p.Notes
	}
}

// JobActivityPatch updates an activity. It never changes the application status.
type JobActivityPatch struct {
	ActivityType  *ActivityType `json:"activityType"`
	ActivityDate  *Date         `json:"activityDate"`
	Description   *string       `json:"description"`
	ContactPerson *string       `json:"contactPerson"`
	Notes         *string       `json:"notes"`
}

func (p JobActivityPatch) Apply(a *JobActivity) {
	if p.ActivityType != nil {
		a.ActivityType = *p.ActivityType
	}
	if p.ActivityDate != nil {
		a.ActivityDate = *p.ActivityDate
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.ContactPerson != nil {
		a.ContactPerson = *p.ContactPerson
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
}

// UserPatch updates the caller's profile. Password is hashed by the caller before storage.
type UserPatch struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
