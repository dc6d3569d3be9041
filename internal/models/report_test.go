package models

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDeriveLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{6, LevelHigh},
		{4.01, LevelHigh},
		{4, LevelMedium},
		{3, LevelMedium},
		{2.5, LevelMedium},
		{2, LevelLow},
		{1, LevelLow},
		{0, LevelLow},
		{-3, LevelLow},
		{math.NaN(), LevelLow},
		{math.Inf(1), LevelHigh},
		{math.Inf(-1), LevelLow},
	}
	for _, tt := range tests {
		if got := DeriveLevel(tt.score); got != tt.want {
			t.Errorf("DeriveLevel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestDeriveLevelIsMonotonic(t *testing.T) {
	prev := DeriveLevel(-10)
	for s := -10.0; s <= 10; s += 0.25 {
		cur := DeriveLevel(s)
		if cur.Rank() < prev.Rank() {
			t.Fatalf("level decreased at score %v: %q after %q", s, cur, prev)
		}
		prev = cur
	}
}

func TestApplySeverityKeepsSeverityAndPriorityEqual(t *testing.T) {
	for _, s := range []float64{0, 1, 2, 3, 4, 5, 9.5} {
		r := &Report{}
		r.ApplySeverity(s)
		if r.Severity != r.Priority {
			t.Errorf("score %v: severity %q != priority %q", s, r.Severity, r.Priority)
		}
		if !r.Severity.Valid() {
			t.Errorf("score %v: invalid severity %q", s, r.Severity)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{"pending", "in_progress", "completed", "rejected"} {
		if !IsValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "resolved", "PENDING", "submitted"} {
		if IsValidStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func validReport() *Report {
	img := "http://cdn/x.jpg"
	r := &Report{
		ID:          "r1",
		UserID:      "u1",
		IssueType:   DefaultIssueType,
		Description: "Pothole on main street",
		ImageURL:    &img,
		MediaType:   MediaTypeImage,
		Location:    Location{Latitude: 12.97, Longitude: 77.59},
		Status:      StatusPending,
		Upvotes:     []string{},
	}
	r.ApplySeverity(0)
	return r
}

func TestReportValidate(t *testing.T) {
	if err := validReport().Validate(); err != nil {
		t.Fatalf("expected valid report, got %v", err)
	}

	cases := map[string]func(r *Report){
		"location.latitude":  func(r *Report) { r.Location.Latitude = 91 },
		"location.longitude": func(r *Report) { r.Location.Longitude = -181 },
		"media":              func(r *Report) { r.ImageURL = nil },
		"description":        func(r *Report) { r.Description = "  " },
		"status":             func(r *Report) { r.Status = "resolved" },
		"severity":           func(r *Report) { r.Priority = LevelHigh },
		"upvoteCount":        func(r *Report) { r.UpvoteCount = 1 },
	}
	for field, mutate := range cases {
		r := validReport()
		mutate(r)
		err := r.Validate()
		var fe *FieldError
		if !errors.As(err, &fe) {
			t.Errorf("%s: expected FieldError, got %v", field, err)
			continue
		}
		if fe.Field != field {
			t.Errorf("expected field %q, got %q", field, fe.Field)
		}
	}
}

func TestLocationJSONIsGeoJSONPoint(t *testing.T) {
	data, err := json.Marshal(Location{Latitude: 10.5, Longitude: -20.25, City: "Pune"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"type":"Point"`) || !strings.Contains(s, `"coordinates":[-20.25,10.5]`) {
		t.Errorf("unexpected location json: %s", s)
	}

	var back Location
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Latitude != 10.5 || back.Longitude != -20.25 || back.City != "Pune" {
		t.Errorf("unexpected location after unmarshal: %+v", back)
	}
}

func TestComputeStatistics(t *testing.T) {
	reports := []Report{
		{Status: StatusPending},
		{Status: StatusPending},
		{Status: StatusInProgress},
		{Status: StatusCompleted},
		{Status: StatusRejected},
	}
	stats := ComputeStatistics(reports)
	if stats.Total != 5 || stats.Pending != 2 || stats.InProgress != 1 || stats.Completed != 1 {
		t.Errorf("unexpected statistics: %+v", stats)
	}
}

func TestComputeUserStats(t *testing.T) {
	stats := ComputeUserStats([]Report{
		{IssueType: "pothole", UpvoteCount: 3},
		{IssueType: "pothole", UpvoteCount: 1},
		{IssueType: "garbage"},
	})
	if stats.ReportCount != 3 || stats.TotalUpvotesReceived != 4 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.CategoryCounts["pothole"] != 2 || stats.CategoryCounts["garbage"] != 1 {
		t.Errorf("unexpected category counts: %v", stats.CategoryCounts)
	}
}
