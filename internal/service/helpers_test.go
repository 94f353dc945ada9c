package service_test

import (
	"sync"
	"testing"

	"github.com/dom/socialnet/internal/domain"
	"github.com/dom/socialnet/internal/repository/postgres"
	"github.com/dom/socialnet/internal/service"
	"github.com/dom/socialnet/internal/testutil"
)

type published struct {
	post       *domain.Post
	recipients []uint
}

// recordingPublisher captures PublishPost calls.
type recordingPublisher struct {
	mu    sync.Mutex
	calls []published
}

func (p *recordingPublisher) PublishPost(post *domain.Post, recipientIDs []uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, published{post: post, recipients: recipientIDs})
}

func (p *recordingPublisher) Calls() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.calls...)
}

func newServices(t *testing.T) (*service.Services, *testutil.TestDB, *recordingPublisher) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	publisher := &recordingPublisher{}
	services := service.NewServices(postgres.NewRepositories(testDB.DB), testutil.TestConfig(), publisher)
	return services, testDB, publisher
}

func ptr[T any](v T) *T {
	return &v
}
