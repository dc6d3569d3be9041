package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/civicsight/internal/auth"
	"github.com/civicsight/internal/classifier"
	"github.com/civicsight/internal/models"
	"github.com/civicsight/internal/repositories"
	"github.com/civicsight/pkg/db"
)

// fakeClassifier returns a fixed result and records the calls it received.
type fakeClassifier struct {
	mu     sync.Mutex
	result classifier.Result
	calls  []classifier.Kind
}

func (f *fakeClassifier) Classify(ctx context.Context, kind classifier.Kind, mediaURL, description string) classifier.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, kind)
	return f.result
}

func succeed(issueType string, score float64) classifier.Result {
	return classifier.Success(classifier.Classification{
		IssueType:     issueType,
		SeverityScore: score,
		Tags:          []string{"road"},
	}, []byte(fmt.Sprintf(`{"issueType":%q,"severityScore":%v}`, issueType, score)))
}

type fakeNotifier struct {
	sent chan models.Report
}

func (f *fakeNotifier) NotifyStatusChange(ctx context.Context, author models.User, report models.Report) error {
	f.sent <- report
	return nil
}

type fixture struct {
	reports  repositories.ReportRepository
	users    repositories.UserRepository
	comments repositories.CommentRepository
	cls      *fakeClassifier
	svc      ReportService
}

func newFixture(t *testing.T, result classifier.Result) *fixture {
	t.Helper()
	gormDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"), "silent")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.CloseSQLite(gormDB) })

	f := &fixture{
		reports:  repositories.NewGormReportRepository(gormDB),
		users:    repositories.NewGormUserRepository(gormDB),
		comments: repositories.NewGormCommentRepository(gormDB),
		cls:      &fakeClassifier{result: result},
	}
	f.svc = NewReportService(f.reports, f.users, f.cls, nil, nil)

	for _, u := range []models.User{
		{ID: "u1", Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleCitizen},
		{ID: "u2", Name: "Ravi", Email: "ravi@example.com", PasswordHash: "x", Role: models.RoleAuthority},
	} {
		u := u
		if err := f.users.Create(context.Background(), &u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return f
}

func imageInput() CreateImageReportInput {
	return CreateImageReportInput{
		UserID:      "u1",
		ImageURL:    "http://cdn/pothole.jpg",
		Description: "Deep pothole near the bus stop",
		Location:    models.Location{Latitude: 12.9716, Longitude: 77.5946, City: "Bengaluru"},
	}
}

func assertInvariants(t *testing.T, r *models.Report) {
	t.Helper()
	if r.UpvoteCount != len(r.Upvotes) {
		t.Errorf("upvoteCount %d != len(upvotes) %d", r.UpvoteCount, len(r.Upvotes))
	}
	if r.Severity != r.Priority || !r.Severity.Valid() {
		t.Errorf("severity %q / priority %q invalid", r.Severity, r.Priority)
	}
}

func TestCreateImageReportDerivesSeverity(t *testing.T) {
	cases := []struct {
		name  string
		score float64
		want  models.Level
	}{
		{"scenario A", 6, models.LevelHigh},
		{"scenario B", 3, models.LevelMedium},
		{"scenario C", 1, models.LevelLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, succeed("pothole", tc.score))
			r, err := f.svc.CreateImageReport(context.Background(), imageInput())
			if err != nil {
				t.Fatalf("CreateImageReport: %v", err)
			}
			if r.Severity != tc.want || r.Priority != tc.want {
				t.Errorf("expected %s, got severity %s priority %s", tc.want, r.Severity, r.Priority)
			}
			if r.Status != models.StatusPending || r.IssueType != "pothole" || r.MediaType != models.MediaTypeImage {
				t.Errorf("unexpected report %+v", r)
			}
			if len(r.AIMetadata) == 0 {
				t.Error("expected raw classifier response in aiMetadata")
			}
			assertInvariants(t, r)

			stored, err := f.reports.FindByID(context.Background(), r.ID)
			if err != nil {
				t.Fatalf("report not persisted: %v", err)
			}
			assertInvariants(t, stored)
		})
	}
}

func TestCreateImageReportDegradesWhenClassifierFails(t *testing.T) {
	f := newFixture(t, classifier.Degraded("connection refused"))
	r, err := f.svc.CreateImageReport(context.Background(), imageInput())
	if err != nil {
		t.Fatalf("submission must not fail when classifier is down: %v", err)
	}
	if r.IssueType != models.DefaultIssueType || r.SeverityScore != 0 {
		t.Errorf("expected default classification, got %s/%v", r.IssueType, r.SeverityScore)
	}
	if r.Severity != models.LevelLow || r.Priority != models.LevelLow {
		t.Errorf("expected low severity, got %s/%s", r.Severity, r.Priority)
	}
	if r.Description != "Deep pothole near the bus stop" {
		t.Errorf("image description should be kept, got %q", r.Description)
	}
	if r.AIMetadata != nil {
		t.Errorf("degraded classification should not store metadata, got %s", r.AIMetadata)
	}
}

func TestCreateImageReportValidation(t *testing.T) {
	f := newFixture(t, succeed("pothole", 3))
	cases := map[string]struct {
		mutate func(in *CreateImageReportInput)
		code   string
	}{
		"missing image":       {func(in *CreateImageReportInput) { in.ImageURL = " " }, CodeMissingImage},
		"missing description": {func(in *CreateImageReportInput) { in.Description = "" }, CodeMissingFields},
		"bad latitude":        {func(in *CreateImageReportInput) { in.Location.Latitude = 120 }, CodeInvalidCoordinates},
	}
	for name, tc := range cases {
		in := imageInput()
		tc.mutate(&in)
		_, err := f.svc.CreateImageReport(context.Background(), in)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Code != tc.code {
			t.Errorf("%s: expected %s, got %v", name, tc.code, err)
		}
	}
	if len(f.cls.calls) != 0 {
		t.Errorf("classifier should not be called for invalid input, got %d calls", len(f.cls.calls))
	}
	all, _ := f.reports.FindAll(context.Background(), 0)
	if len(all) != 0 {
		t.Errorf("no report should be written, found %d", len(all))
	}
}

func TestCreateImageReportWithAudioIsCombined(t *testing.T) {
	f := newFixture(t, succeed("pothole", 3))
	in := imageInput()
	in.AudioURL = "http://cdn/note.m4a"
	r, err := f.svc.CreateImageReport(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateImageReport: %v", err)
	}
	if r.MediaType != models.MediaTypeImageAudio || r.AudioURL == nil {
		t.Errorf("expected combined media, got %s", r.MediaType)
	}
}

func TestCreateAudioReportUsesTranscription(t *testing.T) {
	res := succeed("garbage", 4.5)
	res.Classification.Description = "Garbage piled up on 5th street"
	f := newFixture(t, res)

	r, err := f.svc.CreateAudioReport(context.Background(), CreateAudioReportInput{
		UserID:   "u1",
		AudioURL: "http://cdn/a.m4a",
		ImageURL: "http://cdn/a.jpg",
		Location: models.Location{Latitude: 1, Longitude: 2},
	})
	if err != nil {
		t.Fatalf("CreateAudioReport: %v", err)
	}
	if r.Description != "Garbage piled up on 5th street" || r.Severity != models.LevelHigh {
		t.Errorf("unexpected report %q %s", r.Description, r.Severity)
	}
	if r.MediaType != models.MediaTypeImageAudio {
		t.Errorf("expected image_audio, got %s", r.MediaType)
	}
	if len(f.cls.calls) != 1 || f.cls.calls[0] != classifier.KindAudio {
		t.Errorf("expected one audio classification call, got %v", f.cls.calls)
	}
}

func TestCreateAudioReportTimeoutFallsBack(t *testing.T) {
	f := newFixture(t, classifier.Degraded("timeout after 4m0s"))
	r, err := f.svc.CreateAudioReport(context.Background(), CreateAudioReportInput{
		UserID:   "u1",
		AudioURL: "http://cdn/a.m4a",
		Location: models.Location{Latitude: 1, Longitude: 2},
	})
	if err != nil {
		t.Fatalf("CreateAudioReport: %v", err)
	}
	if r.Description != AudioFallbackDescription || r.IssueType != models.DefaultIssueType {
		t.Errorf("unexpected fallback report %q / %s", r.Description, r.IssueType)
	}
	if r.MediaType != models.MediaTypeAudio || r.ImageURL != nil {
		t.Errorf("expected audio-only report, got %s", r.MediaType)
	}
}

func TestCreateAudioReportRejectsNonCivicIssue(t *testing.T) {
	f := newFixture(t, succeed(models.NonCivicIssueType, 0))
	_, err := f.svc.CreateAudioReport(context.Background(), CreateAudioReportInput{
		UserID:   "u1",
		AudioURL: "http://cdn/noise.m4a",
		Location: models.Location{Latitude: 1, Longitude: 2},
	})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Code != CodeNonCivicIssue {
		t.Fatalf("expected NON_CIVIC_ISSUE, got %v", err)
	}
	all, _ := f.reports.FindAll(context.Background(), 0)
	if len(all) != 0 {
		t.Errorf("rejected report should not be stored")
	}
}

func TestCreateAudioReportRequiresAudio(t *testing.T) {
	f := newFixture(t, succeed("x", 1))
	_, err := f.svc.CreateAudioReport(context.Background(), CreateAudioReportInput{UserID: "u1", Location: models.Location{Latitude: 1, Longitude: 1}})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Code != CodeMissingAudio {
		t.Fatalf("expected MISSING_AUDIO, got %v", err)
	}
}

func TestToggleUpvoteTwiceRestoresState(t *testing.T) {
	f := newFixture(t, succeed("pothole", 3))
	ctx := context.Background()
	created, _ := f.svc.CreateImageReport(ctx, imageInput())

	once, err := f.svc.ToggleUpvote(ctx, created.ID, "u2")
	if err != nil {
		t.Fatalf("ToggleUpvote: %v", err)
	}
	if once.UpvoteCount != 1 || !once.HasUpvote("u2") {
		t.Errorf("expected u2 upvote, got %v", once.Upvotes)
	}
	assertInvariants(t, once)

	twice, err := f.svc.ToggleUpvote(ctx, created.ID, "u2")
	if err != nil {
		t.Fatalf("ToggleUpvote: %v", err)
	}
	if twice.UpvoteCount != created.UpvoteCount || twice.HasUpvote("u2") {
		t.Errorf("double toggle should restore original state, got %v", twice.Upvotes)
	}
	assertInvariants(t, twice)

	if _, err := f.svc.ToggleUpvote(ctx, "missing", "u2"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}
}

func TestConcurrentUpvotesFromTwoUsers(t *testing.T) {
	f := newFixture(t, succeed("pothole", 3))
	ctx := context.Background()
	created, _ := f.svc.CreateImageReport(ctx, imageInput())

	var wg sync.WaitGroup
	for _, user := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			if _, err := f.svc.ToggleUpvote(ctx, created.ID, user); err != nil {
				t.Errorf("ToggleUpvote(%s): %v", user, err)
			}
		}(user)
	}
	wg.Wait()

	got, err := f.svc.GetReportByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetReportByID: %v", err)
	}
	if got.UpvoteCount != 2 || !got.HasUpvote("u1") || !got.HasUpvote("u2") {
		t.Errorf("expected both upvotes, got %v (%d)", got.Upvotes, got.UpvoteCount)
	}
}

func TestGetVerifiedReportsOrdering(t *testing.T) {
	f := newFixture(t, succeed("pothole", 3))
	ctx := context.Background()

	counts := []int{0, 5, 3}
	ids := make([]string, len(counts))
	for i, n := range counts {
		r, err := f.svc.CreateImageReport(ctx, imageInput())
		if err != nil {
			t.Fatalf("CreateImageReport: %v", err)
		}
		ids[i] = r.ID
		for v := 0; v < n; v++ {
			if _, err := f.svc.ToggleUpvote(ctx, r.ID, fmt.Sprintf("voter-%d", v)); err != nil {
				t.Fatalf("ToggleUpvote: %v", err)
			}
		}
	}

	verified, err := f.svc.GetVerifiedReports(ctx)
	if err != nil {
		t.Fatalf("GetVerifiedReports: %v", err)
	}
	if len(verified) != 2 {
		t.Fatalf("expected 2 verified reports, got %d", len(verified))
	}
	if verified[0].ID != ids[1] || verified[0].UpvoteCount != 5 || verified[1].ID != ids[2] || verified[1].UpvoteCount != 3 {
		t.Errorf("unexpected ordering: %s(%d), %s(%d)", verified[0].ID, verified[0].UpvoteCount, verified[1].ID, verified[1].UpvoteCount)
	}
	if verified[0].Author == nil || verified[0].Author.Name != "Asha" {
		t.Errorf("expected author enrichment, got %+v", verified[0].Author)
	}
}

func TestGetReportsNewestFirstWithAuthors(t *testing.T) {
	f := newFixture(t, succeed("pothole", 3))
	ctx := context.Background()
	first, _ := f.svc.CreateImageReport(ctx, imageInput())
	time.Sleep(10 * time.Millisecond)
	in := imageInput()
	in.UserID = "u2"
	second, _ := f.svc.CreateImageReport(ctx, in)

	all, err := f.svc.GetReports(ctx)
	if err != nil {
		t.Fatalf("GetReports: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("unexpected order")
	}
	if all[0].Author == nil || all[0].Author.Email != "ravi@example.com" {
		t.Errorf("unexpected author %+v", all[0].Author)
	}
}

func TestGetMyReportsStatistics(t *testing.T) {
	f := newFixture(t, succeed("pothole", 3))
	ctx := context.Background()
	actor := auth.Actor{UserID: "u2", Role: models.RoleAuthority}

	a, _ := f.svc.CreateImageReport(ctx, imageInput())
	b, _ := f.svc.CreateImageReport(ctx, imageInput())
	_, _ = f.svc.CreateImageReport(ctx, imageInput())
	other := imageInput()
	other.UserID = "u2"
	_, _ = f.svc.CreateImageReport(ctx, other)

	_, _ = f.svc.UpdateStatus(ctx, actor, a.ID, "in_progress")
	_, _ = f.svc.UpdateStatus(ctx, actor, b.ID, "completed")

	mine, err := f.svc.GetMyReports(ctx, "u1")
	if err != nil {
		t.Fatalf("GetMyReports: %v", err)
	}
	want := models.ReportStatistics{Total: 3, Pending: 1, InProgress: 1, Completed: 1}
	if mine.Statistics != want {
		t.Errorf("expected %+v, got %+v", want, mine.Statistics)
	}
}

func TestUpdateStatusValidationAndNotFound(t *testing.T) {
	f := newFixture(t, succeed("pothole", 3))
	ctx := context.Background()
	actor := auth.Actor{UserID: "u1", Role: models.RoleCitizen}
	created, _ := f.svc.CreateImageReport(ctx, imageInput())

	_, err := f.svc.UpdateStatus(ctx, actor, created.ID, "resolved")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Code != CodeInvalidStatus {
		t.Errorf("expected INVALID_STATUS, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, actor, "missing", "completed"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("expected ErrReportNotFound, got %v", err)
	}

	updated, err := f.svc.UpdateStatus(ctx, actor, created.ID, "rejected")
	if err != nil || updated.Status != models.StatusRejected {
		t.Fatalf("UpdateStatus: %v %+v", err, updated)
	}
	// 状态之间可以任意转换
	back, err := f.svc.UpdateStatus(ctx, actor, created.ID, "pending")
	if err != nil || back.Status != models.StatusPending {
		t.Errorf("expected free transition back to pending: %v", err)
	}
}

func TestUpdateStatusRolePolicyAndNotification(t *testing.T) {
	f := newFixture(t, succeed("pothole", 3))
	notifier := &fakeNotifier{sent: make(chan models.Report, 1)}
	svc := NewReportService(f.reports, f.users, f.cls, auth.NewStatusPolicy([]string{"authority"}), notifier)
	ctx := context.Background()
	created, _ := svc.CreateImageReport(ctx, imageInput())

	if _, err := svc.UpdateStatus(ctx, auth.Actor{UserID: "u1", Role: "citizen"}, created.ID, "completed"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, auth.Actor{UserID: "u2", Role: "authority"}, created.ID, "completed"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	select {
	case r := <-notifier.sent:
		if r.ID != created.ID || r.Status != models.StatusCompleted {
			t.Errorf("unexpected notification %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected status notification")
	}
}

func TestGetNearbyReports(t *testing.T) {
	f := newFixture(t, succeed("pothole", 3))
	ctx := context.Background()
	_, _ = f.svc.CreateImageReport(ctx, imageInput())
	far := imageInput()
	far.Location = models.Location{Latitude: 19.0760, Longitude: 72.8777}
	_, _ = f.svc.CreateImageReport(ctx, far)

	near, err := f.svc.GetNearbyReports(ctx, 12.97, 77.59, 0)
	if err != nil {
		t.Fatalf("GetNearbyReports: %v", err)
	}
	if len(near) != 1 || near[0].Location.City != "Bengaluru" {
		t.Errorf("expected only the Bengaluru report, got %d", len(near))
	}

	_, err = f.svc.GetNearbyReports(ctx, 91, 0, 1)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Code != CodeInvalidCoordinates {
		t.Errorf("expected INVALID_COORDINATES, got %v", err)
	}
}
