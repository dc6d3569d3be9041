package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/civicsight/internal/models"
)

func TestCommentsNewestFirst(t *testing.T) {
	repo := NewGormCommentRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, text := range []string{"first", "second", "third"} {
		c := &models.Comment{
			ID:        "c" + text,
			ReportID:  "r1",
			UserID:    "u1",
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	_ = repo.Create(ctx, &models.Comment{ID: "other", ReportID: "r2", UserID: "u1", Text: "elsewhere"})

	comments, err := repo.FindByReportID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByReportID: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}
	if comments[0].Text != "third" || comments[2].Text != "first" {
		t.Errorf("unexpected order: %s, %s, %s", comments[0].Text, comments[1].Text, comments[2].Text)
	}

	empty, err := repo.FindByReportID(ctx, "none")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v, %v", empty, err)
	}
}
