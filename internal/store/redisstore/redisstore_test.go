package redisstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kaziflow/kazi-sync/internal/store"
	"github.com/kaziflow/kazi-sync/internal/store/redisstore"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis launches a throwaway Redis container and returns its URL.
func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate Redis: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func setupRedisStore(t *testing.T) *redisstore.RedisStore {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	opts := redisstore.DefaultOptions()
	opts.URL = startRedis(t)
	rs, err := redisstore.New(opts)
	if err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}
	t.Cleanup(func() { _ = rs.Close() })
	return rs
}

// waitFor polls until cond is true or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal(msg)
}

// TestRedisDocumentRoundTrip tests writes, reads, and the missing
// document contract against a real Redis.
func TestRedisDocumentRoundTrip(t *testing.T) {
	rs := setupRedisStore(t)
	ctx := context.Background()

	snap, err := rs.GetDocument(ctx, "users", "nobody")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if snap.Exists {
		t.Error("Expected missing document")
	}

	if err := rs.SetDocument(ctx, "users", "u1", map[string]interface{}{"name": "Asha"}); err != nil {
		t.Fatalf("SetDocument failed: %v", err)
	}
	snap, err = rs.GetDocument(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if !snap.Exists || snap.Fields["name"] != "Asha" {
		t.Errorf("Expected stored document, got %+v", snap)
	}
}

// TestRedisDocumentSubscription tests initial delivery plus pub/sub
// change propagation.
func TestRedisDocumentSubscription(t *testing.T) {
	rs := setupRedisStore(t)
	ctx := context.Background()

	snaps := make(chan store.Snapshot, 16)
	sub, err := rs.SubscribeToDocument("users", "u1", func(s store.Snapshot) {
		snaps <- s
	})
	if err != nil {
		t.Fatalf("SubscribeToDocument failed: %v", err)
	}
	defer sub.Release()

	first := <-snaps
	if first.Exists {
		t.Error("Expected initial snapshot of a missing document")
	}

	if err := rs.SetDocument(ctx, "users", "u1", map[string]interface{}{"name": "Asha"}); err != nil {
		t.Fatalf("SetDocument failed: %v", err)
	}

	select {
	case snap := <-snaps:
		if !snap.Exists || snap.Fields["name"] != "Asha" {
			t.Errorf("Expected change snapshot, got %+v", snap)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for change snapshot")
	}
}

// TestRedisQuerySubscription tests scoped live queries and release
// semantics.
func TestRedisQuerySubscription(t *testing.T) {
	rs := setupRedisStore(t)
	ctx := context.Background()

	if err := rs.SetDocument(ctx, "projects", "p1", map[string]interface{}{"ownerId": "u1"}); err != nil {
		t.Fatalf("SetDocument failed: %v", err)
	}
	if err := rs.SetDocument(ctx, "projects", "p2", map[string]interface{}{"ownerId": "u2"}); err != nil {
		t.Fatalf("SetDocument failed: %v", err)
	}

	results := make(chan []store.Snapshot, 16)
	sub, err := rs.SubscribeToQuery(store.Query{Collection: "projects", Field: "ownerId", Equals: "u1"}, func(rows []store.Snapshot) {
		results <- rows
	})
	if err != nil {
		t.Fatalf("SubscribeToQuery failed: %v", err)
	}

	first := <-results
	if len(first) != 1 || first[0].ID != "p1" {
		t.Fatalf("Expected scoped initial result set, got %+v", first)
	}

	if err := rs.SetDocument(ctx, "projects", "p3", map[string]interface{}{"ownerId": "u1"}); err != nil {
		t.Fatalf("SetDocument failed: %v", err)
	}
	waitFor(t, func() bool {
		select {
		case rows := <-results:
			return len(rows) == 2
		default:
			return false
		}
	}, "Timed out waiting for updated result set")

	if !sub.Release() {
		t.Error("Expected Release to report release")
	}
	if sub.Release() {
		t.Error("Expected second Release to be a no-op")
	}

	// Writes after release must not deliver.
	if err := rs.SetDocument(ctx, "projects", "p4", map[string]interface{}{"ownerId": "u1"}); err != nil {
		t.Fatalf("SetDocument failed: %v", err)
	}
	time.Sleep(500 * time.Millisecond)
	select {
	case rows := <-results:
		t.Errorf("Expected no delivery after release, got %+v", rows)
	default:
	}
}

// TestRedisAddDocument tests id assignment through the append path.
func TestRedisAddDocument(t *testing.T) {
	rs := setupRedisStore(t)
	ctx := context.Background()

	id, err := rs.AddDocument(ctx, "sentEmails", map[string]interface{}{
		"to":   "a@example.com",
		"read": false,
	})
	if err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}

	snap, err := rs.GetDocument(ctx, "sentEmails", id)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if !snap.Exists || snap.Fields["to"] != "a@example.com" {
		t.Errorf("Expected appended document, got %+v", snap)
	}
}
