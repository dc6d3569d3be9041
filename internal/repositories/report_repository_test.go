package repositories

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/civicsight/internal/models"
	"github.com/civicsight/pkg/db"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), "silent")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.CloseSQLite(gormDB) })
	return gormDB
}

func newReport(id, userID string, lat, lng float64, createdAt time.Time) *models.Report {
	img := "http://cdn/" + id + ".jpg"
	r := &models.Report{
		ID:          id,
		UserID:      userID,
		IssueType:   "pothole",
		Description: "report " + id,
		ImageURL:    &img,
		MediaType:   models.MediaTypeImage,
		Location:    models.Location{Latitude: lat, Longitude: lng},
		Status:      models.StatusPending,
		CreatedAt:   createdAt,
	}
	r.ApplySeverity(3)
	return r
}

func TestReportCreateAndFindByID(t *testing.T) {
	repo := NewGormReportRepository(openTestDB(t))
	ctx := context.Background()

	r := newReport("r1", "u1", 12.97, 77.59, time.Now())
	r.Tags = []string{"road", "safety"}
	r.AIMetadata = []byte(`{"issueType":"pothole","severityScore":3}`)
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.FindByID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Severity != models.LevelMedium || got.Priority != models.LevelMedium {
		t.Errorf("unexpected severity/priority: %s/%s", got.Severity, got.Priority)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "road" {
		t.Errorf("unexpected tags: %v", got.Tags)
	}
	if got.Upvotes == nil || len(got.Upvotes) != 0 || got.UpvoteCount != 0 {
		t.Errorf("expected empty upvotes, got %v (%d)", got.Upvotes, got.UpvoteCount)
	}
	if got.Location.Latitude != 12.97 || got.Location.Longitude != 77.59 {
		t.Errorf("unexpected location: %+v", got.Location)
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestReportCreateRejectsInvalidReport(t *testing.T) {
	repo := NewGormReportRepository(openTestDB(t))
	r := newReport("bad", "u1", 95, 0, time.Now())

	err := repo.Create(context.Background(), r)
	var fe *models.FieldError
	if !errors.As(err, &fe) || fe.Field != "location.latitude" {
		t.Fatalf("expected latitude FieldError, got %v", err)
	}
	if _, err := repo.FindByID(context.Background(), "bad"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("invalid report should not be stored, got %v", err)
	}
}

func TestReportFindAllNewestFirst(t *testing.T) {
	repo := NewGormReportRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, newReport(fmt.Sprintf("r%d", i), "u1", 1, 1, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.FindAll(ctx, 0)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 3 || all[0].ID != "r2" || all[2].ID != "r0" {
		t.Errorf("unexpected order: %v", ids(all))
	}

	limited, err := repo.FindAll(ctx, 2)
	if err != nil {
		t.Fatalf("FindAll limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 reports, got %d", len(limited))
	}
}

func TestReportFindByUserID(t *testing.T) {
	repo := NewGormReportRepository(openTestDB(t))
	ctx := context.Background()
	_ = repo.Create(ctx, newReport("a", "u1", 1, 1, time.Now()))
	_ = repo.Create(ctx, newReport("b", "u2", 1, 1, time.Now()))

	mine, err := repo.FindByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "a" {
		t.Errorf("unexpected reports: %v", ids(mine))
	}

	none, err := repo.FindByUserID(ctx, "nobody")
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v, %v", none, err)
	}
}

func TestReportUpdateStatus(t *testing.T) {
	repo := NewGormReportRepository(openTestDB(t))
	ctx := context.Background()
	_ = repo.Create(ctx, newReport("r1", "u1", 1, 1, time.Now()))

	got, err := repo.UpdateStatus(ctx, "r1", models.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != models.StatusInProgress {
		t.Errorf("expected in_progress, got %s", got.Status)
	}

	if _, err := repo.UpdateStatus(ctx, "missing", models.StatusCompleted); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestToggleUpvoteRoundTrip(t *testing.T) {
	repo := NewGormReportRepository(openTestDB(t))
	ctx := context.Background()
	_ = repo.Create(ctx, newReport("r1", "u1", 1, 1, time.Now()))

	got, added, err := repo.ToggleUpvote(ctx, "r1", "voter")
	if err != nil {
		t.Fatalf("ToggleUpvote: %v", err)
	}
	if !added || got.UpvoteCount != 1 || !got.HasUpvote("voter") {
		t.Fatalf("expected upvote added, got added=%v count=%d upvotes=%v", added, got.UpvoteCount, got.Upvotes)
	}

	got, added, err = repo.ToggleUpvote(ctx, "r1", "voter")
	if err != nil {
		t.Fatalf("ToggleUpvote: %v", err)
	}
	if added || got.UpvoteCount != 0 || len(got.Upvotes) != 0 {
		t.Fatalf("expected upvote removed, got added=%v count=%d upvotes=%v", added, got.UpvoteCount, got.Upvotes)
	}

	if _, _, err := repo.ToggleUpvote(ctx, "missing", "voter"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestToggleUpvoteConcurrentDistinctUsers(t *testing.T) {
	repo := NewGormReportRepository(openTestDB(t))
	ctx := context.Background()
	_ = repo.Create(ctx, newReport("r1", "u1", 1, 1, time.Now()))

	const voters = 10
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, _, err := repo.ToggleUpvote(ctx, "r1", fmt.Sprintf("voter-%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent toggle failed: %v", err)
	}

	got, err := repo.FindByID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.UpvoteCount != voters || len(got.Upvotes) != voters {
		t.Errorf("expected %d upvotes, got count=%d set=%d", voters, got.UpvoteCount, len(got.Upvotes))
	}
}

func TestFindTopUpvoted(t *testing.T) {
	repo := NewGormReportRepository(openTestDB(t))
	ctx := context.Background()
	votes := map[string]int{"a": 5, "b": 2, "c": 0, "d": 1}
	for id, n := range votes {
		if err := repo.Create(ctx, newReport(id, "u1", 1, 1, time.Now())); err != nil {
			t.Fatalf("Create: %v", err)
		}
		for i := 0; i < n; i++ {
			if _, _, err := repo.ToggleUpvote(ctx, id, fmt.Sprintf("v%d", i)); err != nil {
				t.Fatalf("ToggleUpvote: %v", err)
			}
		}
	}

	top, err := repo.FindTopUpvoted(ctx, 10)
	if err != nil {
		t.Fatalf("FindTopUpvoted: %v", err)
	}
	want := []string{"a", "b", "d"}
	if got := ids(top); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	top, _ = repo.FindTopUpvoted(ctx, 1)
	if len(top) != 1 || top[0].ID != "a" {
		t.Errorf("expected only a, got %v", ids(top))
	}
}

func TestFindNearby(t *testing.T) {
	repo := NewGormReportRepository(openTestDB(t))
	ctx := context.Background()
	now := time.Now()
	// 班加罗尔市中心附近两个点，另一个约 1.5 公里外，一个在孟买
	_ = repo.Create(ctx, newReport("center", "u1", 12.9716, 77.5946, now))
	_ = repo.Create(ctx, newReport("close", "u1", 12.9730, 77.5960, now))
	_ = repo.Create(ctx, newReport("km", "u1", 12.9850, 77.5946, now))
	_ = repo.Create(ctx, newReport("mumbai", "u1", 19.0760, 72.8777, now))

	near, err := repo.FindNearby(ctx, 12.9716, 77.5946, 500, 0)
	if err != nil {
		t.Fatalf("FindNearby: %v", err)
	}
	if got := ids(near); fmt.Sprint(got) != fmt.Sprint([]string{"center", "close"}) {
		t.Errorf("unexpected nearby reports: %v", got)
	}

	wider, _ := repo.FindNearby(ctx, 12.9716, 77.5946, 5000, 2)
	if len(wider) != 2 || wider[0].ID != "center" {
		t.Errorf("unexpected limited nearby reports: %v", ids(wider))
	}
}

func ids(reports []models.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ID
	}
	return out
}
