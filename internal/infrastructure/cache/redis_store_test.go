package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"LaunchDigest/internal/domain"
)

// memoryRedis serves the commands the store issues from a map; any other
// command panics on the nil embedded interface.
type memoryRedis struct {
	redis.Cmdable

	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func (m *memoryRedis) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := value.([]byte)
	if !ok {
		return redis.NewStatusResult("", errors.New("unexpected value type"))
	}
	if m.values == nil {
		m.values = map[string]string{}
		m.ttls = map[string]time.Duration{}
	}
	m.values[key] = string(raw)
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	t.Parallel()

	client := &memoryRedis{}
	s := NewRedisDetailStore(client, "")
	ctx := context.Background()

	detail := domain.ServiceDetail{
		ServiceName:       "Amazon Bedrock",
		Overview:          "Managed foundation models.",
		Benefits:          []string{"Choice of models"},
		RecommendedTopics: []string{"Best Practices"},
		Pricing:           domain.KnownPricing("AmazonBedrock", "Pay-as-you-go", "", "$10", nil),
		FetchedAt:         time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := s.Save(ctx, "Amazon Bedrock", detail, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := client.ttls[s.key("Amazon Bedrock")]; got != time.Hour {
		t.Fatalf("ttl not forwarded: %s", got)
	}

	got, ok, err := s.Load(ctx, "  amazon BEDROCK")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(detail, got); diff != "" {
		t.Fatalf("detail mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissIsNotAnError(t *testing.T) {
	t.Parallel()

	s := NewRedisDetailStore(&memoryRedis{}, "")
	detail, ok, err := s.Load(context.Background(), "Amazon Nova")
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if detail.ServiceName != "" {
		t.Fatalf("miss must return zero detail, got %+v", detail)
	}
}

func TestLoadWrapsCommandAndDecodeErrors(t *testing.T) {
	t.Parallel()

	s := NewRedisDetailStore(&memoryRedis{getErr: errors.New("READONLY replica")}, "")
	if _, _, err := s.Load(context.Background(), "Amazon S3"); err == nil || !strings.Contains(err.Error(), "get detail") {
		t.Fatalf("expected wrapped get error, got %v", err)
	}

	corrupt := &memoryRedis{}
	s = NewRedisDetailStore(corrupt, "")
	corrupt.values = map[string]string{s.key("Amazon S3"): "{not json"}
	if _, ok, err := s.Load(context.Background(), "Amazon S3"); err == nil || ok || !strings.Contains(err.Error(), "decode detail") {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
}

func TestKeyIsStableAcrossSpellings(t *testing.T) {
	t.Parallel()

	s := NewRedisDetailStore(nil, "")
	a := s.key("Amazon Bedrock")
	b := s.key("  amazon   BEDROCK ")
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
	if !strings.HasPrefix(a, defaultPrefix) || len(a) != len(defaultPrefix)+64 {
		t.Fatalf("unexpected key shape: %q", a)
	}
	if s.key("AWS Lambda") == a {
		t.Fatalf("different services must not share a key")
	}
}

func TestCustomPrefix(t *testing.T) {
	t.Parallel()

	s := NewRedisDetailStore(nil, "test:")
	if !strings.HasPrefix(s.key("x"), "test:") {
		t.Fatalf("custom prefix ignored: %s", s.key("x"))
	}
}

func TestUnreachableRedisReturnsError(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	s := NewRedisDetailStore(client, "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, ok, err := s.Load(ctx, "Amazon S3"); err == nil || ok {
		t.Fatalf("expected load error, got ok=%v err=%v", ok, err)
	}
	if err := s.Save(ctx, "Amazon S3", domain.ServiceDetail{ServiceName: "Amazon S3"}, time.Minute); err == nil {
		t.Fatalf("expected save error")
	}
}
