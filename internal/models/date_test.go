package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	d, err = ParseDate("2024-02-29T23:15:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	var payload struct {
		Day      Date  `json:"day"`
		Deadline *Date `json:"deadline"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2024-01-05","deadline":null}`), &payload))
	assert.Equal(t, "2024-01-05", payload.Day.String())
	assert.Nil(t, payload.Deadline)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-01-05","deadline":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"day":"not-a-date"}`), &payload))
}

func TestDate_Scan(t *testing.T) {
	t.Parallel()

	var d Date
	require.NoError(t, d.Scan(time.Date(2023, 12, 31, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2023-12-31", d.String())

	require.NoError(t, d.Scan("2023-11-30"))
	assert.Equal(t, "2023-11-30", d.String())

	require.NoError(t, d.Scan([]byte("2023-10-01 00:00:00+00:00")))
	assert.Equal(t, "2023-10-01", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2024, 6, 7).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-07", v)
}

func TestPageRequest(t *testing.T) {
	t.Parallel()

	p := NewPageRequest(0, 0)
	assert.Equal(t, PageRequest{Page: 1, Limit: 10}, p)

	p = NewPageRequest(2, 500)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 100, p.Offset())

	p = NewPageRequest(3, 10)
	assert.Equal(t, Pagination{Total: 23, Page: 3, Pages: 3, Limit: 10}, p.Paginate(23))
	assert.Equal(t, 0, p.Paginate(0).Pages)
}

func TestDailyEntryPatch_Apply(t *testing.T) {
	t.Parallel()

	sub := "sub-1"
	entry := &DailyEntry{
		ProjectID:        "p1",
		SubprojectID:     &sub,
		WhatShippedToday: "old",
		WhatSlowedDown:   "meetings",
		HoursSpent:       2,
	}

	hours := 1.239
	empty := ""
	shipped := "new"
	DailyEntryPatch{
		HoursSpent:       &hours,
		SubprojectID:     &empty,
		WhatSlowedDown:   &empty,
		WhatShippedToday: &shipped,
	}.Apply(entry)

	assert.Equal(t, "p1", entry.ProjectID)
	assert.Nil(t, entry.SubprojectID)
	assert.Equal(t, "", entry.WhatSlowedDown)
	assert.Equal(t, "new", entry.WhatShippedToday)
	assert.InDelta(t, 1.24, entry.HoursSpent, 0.0001)
}

func TestDailyEntryPatch_ProjectMoveDropsSubproject(t *testing.T) {
	t.Parallel()

	sub := "sub-1"
	entry := &DailyEntry{ProjectID: "p1", SubprojectID: &sub}
	same := "p1"
	DailyEntryPatch{ProjectID: &same}.Apply(entry)
	require.NotNil(t, entry.SubprojectID, "re-sending the same project keeps the subproject")

	target := "p2"
	DailyEntryPatch{ProjectID: &target}.Apply(entry)
	assert.Equal(t, "p2", entry.ProjectID)
	assert.Nil(t, entry.SubprojectID)

	next := "sub-2"
	DailyEntryPatch{ProjectID: &same, SubprojectID: &next}.Apply(entry)
	require.NotNil(t, entry.SubprojectID)
	assert.Equal(t, "sub-2", *entry.SubprojectID)

	review := &WeeklyReview{ProjectID: "p1", SubprojectID: &sub}
	WeeklyReviewPatch{ProjectID: &target}.Apply(review)
	assert.Nil(t, review.SubprojectID)
}

func TestProjectPatch_ClearsDeadline(t *testing.T) {
	t.Parallel()

	deadline := NewDate(2024, 1, 1)
	proj := &Project{Name: "keep", Deadline: &deadline}

	ProjectPatch{Deadline: &Date{}}.Apply(proj)
	assert.Nil(t, proj.Deadline)
	assert.Equal(t, "keep", proj.Name)
}
