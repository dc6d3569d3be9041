package repositories

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/civicsight/pkg/db"
	"go.mongodb.org/mongo-driver/mongo"
)

// openTestMongo 需要设置 MONGO_TEST_URI，每个测试使用独立数据库并在结束时删除
func openTestMongo(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("Skipping MongoDB test: MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	name := fmt.Sprintf("civicsight_test_%d", time.Now().UnixNano())
	client, database, err := db.ConnectMongo(ctx, uri, name)
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Drop(ctx)
		db.DisconnectMongo(ctx, client)
	})
	return database
}

func TestMongoToggleUpvoteRoundTrip(t *testing.T) {
	repo := NewMongoReportRepository(openTestMongo(t))
	ctx := context.Background()
	if err := repo.Create(ctx, newReport("r1", "u1", 12.97, 77.59, time.Now())); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, added, err := repo.ToggleUpvote(ctx, "r1", "voter")
	if err != nil || !added || got.UpvoteCount != 1 {
		t.Fatalf("expected added upvote, got %v %v %+v", err, added, got)
	}
	got, added, err = repo.ToggleUpvote(ctx, "r1", "voter")
	if err != nil || added || got.UpvoteCount != 0 || len(got.Upvotes) != 0 {
		t.Fatalf("expected removed upvote, got %v %v %+v", err, added, got)
	}
}

func TestMongoToggleUpvoteConcurrent(t *testing.T) {
	repo := NewMongoReportRepository(openTestMongo(t))
	ctx := context.Background()
	_ = repo.Create(ctx, newReport("r1", "u1", 12.97, 77.59, time.Now()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _ = repo.ToggleUpvote(ctx, "r1", fmt.Sprintf("voter-%d", i))
		}(i)
	}
	wg.Wait()

	got, err := repo.FindByID(ctx, "r1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.UpvoteCount != 20 || len(got.Upvotes) != 20 {
		t.Errorf("expected 20 upvotes, got count=%d set=%d", got.UpvoteCount, len(got.Upvotes))
	}
}

func TestMongoFindNearbyAndTopUpvoted(t *testing.T) {
	repo := NewMongoReportRepository(openTestMongo(t))
	ctx := context.Background()
	now := time.Now()
	_ = repo.Create(ctx, newReport("center", "u1", 12.9716, 77.5946, now))
	_ = repo.Create(ctx, newReport("mumbai", "u1", 19.0760, 72.8777, now))
	_, _, _ = repo.ToggleUpvote(ctx, "mumbai", "v1")

	near, err := repo.FindNearby(ctx, 12.9716, 77.5946, 1000, 10)
	if err != nil {
		t.Fatalf("FindNearby: %v", err)
	}
	if len(near) != 1 || near[0].ID != "center" {
		t.Errorf("unexpected nearby reports: %v", ids(near))
	}

	top, err := repo.FindTopUpvoted(ctx, 10)
	if err != nil {
		t.Fatalf("FindTopUpvoted: %v", err)
	}
	if len(top) != 1 || top[0].ID != "mumbai" {
		t.Errorf("unexpected top reports: %v", ids(top))
	}
}
