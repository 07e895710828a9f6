package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/skylens/skylens-backend/internal/domain"
)

var _ feedClient = &feedClientMock{}

type feedClientMock struct {
	DIDFunc               func() string
	LoginFunc             func(ctx context.Context) (string, error)
	ListNotificationsFunc func(ctx context.Context, cursor string, limit int) (*domain.NotificationPage, error)
	UpdateSeenFunc        func(ctx context.Context, seenAt time.Time) error

	calls struct {
		ListNotifications []struct {
			Cursor string
			Limit  int
		}
		UpdateSeen []struct {
			SeenAt time.Time
		}
	}
	lockListNotifications sync.RWMutex
	lockUpdateSeen        sync.RWMutex
}

func (mock *feedClientMock) DID() string {
	if mock.DIDFunc == nil {
		return "did:plc:self"
	}
	return mock.DIDFunc()
}

func (mock *feedClientMock) Login(ctx context.Context) (string, error) {
	if mock.LoginFunc == nil {
		return mock.DID(), nil
	}
	return mock.LoginFunc(ctx)
}

func (mock *feedClientMock) ListNotifications(ctx context.Context, cursor string, limit int) (*domain.NotificationPage, error) {
	if mock.ListNotificationsFunc == nil {
		panic("feedClientMock.ListNotificationsFunc: method is nil but feedClient.ListNotifications was just called")
	}
	callInfo := struct {
		Cursor string
		Limit  int
	}{Cursor: cursor, Limit: limit}
	mock.lockListNotifications.Lock()
	mock.calls.ListNotifications = append(mock.calls.ListNotifications, callInfo)
	mock.lockListNotifications.Unlock()
	return mock.ListNotificationsFunc(ctx, cursor, limit)
}

func (mock *feedClientMock) ListNotificationsCalls() []struct {
	Cursor string
	Limit  int
} {
	mock.lockListNotifications.RLock()
	calls := mock.calls.ListNotifications
	mock.lockListNotifications.RUnlock()
	return calls
}

func (mock *feedClientMock) UpdateSeen(ctx context.Context, seenAt time.Time) error {
	if mock.UpdateSeenFunc == nil {
		panic("feedClientMock.UpdateSeenFunc: method is nil but feedClient.UpdateSeen was just called")
	}
	mock.lockUpdateSeen.Lock()
	mock.calls.UpdateSeen = append(mock.calls.UpdateSeen, struct{ SeenAt time.Time }{SeenAt: seenAt})
	mock.lockUpdateSeen.Unlock()
	return mock.UpdateSeenFunc(ctx, seenAt)
}

func (mock *feedClientMock) UpdateSeenCalls() []struct{ SeenAt time.Time } {
	mock.lockUpdateSeen.RLock()
	calls := mock.calls.UpdateSeen
	mock.lockUpdateSeen.RUnlock()
	return calls
}

var _ postLoader = &postLoaderMock{}

type postLoaderMock struct {
	LoadManyFunc func(ctx context.Context, uris []string) ([]*domain.Post, error)

	calls struct {
		LoadMany []struct {
			URIs []string
		}
	}
	lockLoadMany sync.RWMutex
}

func (mock *postLoaderMock) LoadMany(ctx context.Context, uris []string) ([]*domain.Post, error) {
	if mock.LoadManyFunc == nil {
		panic("postLoaderMock.LoadManyFunc: method is nil but postLoader.LoadMany was just called")
	}
	mock.lockLoadMany.Lock()
	mock.calls.LoadMany = append(mock.calls.LoadMany, struct{ URIs []string }{URIs: uris})
	mock.lockLoadMany.Unlock()
	return mock.LoadManyFunc(ctx, uris)
}

func (mock *postLoaderMock) LoadManyCalls() []struct{ URIs []string } {
	mock.lockLoadMany.RLock()
	calls := mock.calls.LoadMany
	mock.lockLoadMany.RUnlock()
	return calls
}

var _ notificationRepo = &notificationRepoMock{}

type notificationRepoMock struct {
	UpsertBatchFunc    func(ctx context.Context, ns []*domain.Notification) error
	ListRecentFunc     func(ctx context.Context, limit int) ([]*domain.Notification, error)
	MarkReadBeforeFunc func(ctx context.Context, cutoff time.Time) (int, error)
	CountFunc          func(ctx context.Context) (int, error)

	calls struct {
		UpsertBatch []struct {
			Ns []*domain.Notification
		}
		ListRecent []struct {
			Limit int
		}
		MarkReadBefore []struct {
			Cutoff time.Time
		}
		Count []struct{}
	}
	lockUpsertBatch    sync.RWMutex
	lockListRecent     sync.RWMutex
	lockMarkReadBefore sync.RWMutex
	lockCount          sync.RWMutex
}

func (mock *notificationRepoMock) UpsertBatch(ctx context.Context, ns []*domain.Notification) error {
	if mock.UpsertBatchFunc == nil {
		panic("notificationRepoMock.UpsertBatchFunc: method is nil but notificationRepo.UpsertBatch was just called")
	}
	mock.lockUpsertBatch.Lock()
	mock.calls.UpsertBatch = append(mock.calls.UpsertBatch, struct{ Ns []*domain.Notification }{Ns: ns})
	mock.lockUpsertBatch.Unlock()
	return mock.UpsertBatchFunc(ctx, ns)
}

func (mock *notificationRepoMock) UpsertBatchCalls() []struct{ Ns []*domain.Notification } {
	mock.lockUpsertBatch.RLock()
	calls := mock.calls.UpsertBatch
	mock.lockUpsertBatch.RUnlock()
	return calls
}

func (mock *notificationRepoMock) ListRecent(ctx context.Context, limit int) ([]*domain.Notification, error) {
	if mock.ListRecentFunc == nil {
		panic("notificationRepoMock.ListRecentFunc: method is nil but notificationRepo.ListRecent was just called")
	}
	mock.lockListRecent.Lock()
	mock.calls.ListRecent = append(mock.calls.ListRecent, struct{ Limit int }{Limit: limit})
	mock.lockListRecent.Unlock()
	return mock.ListRecentFunc(ctx, limit)
}

func (mock *notificationRepoMock) ListRecentCalls() []struct{ Limit int } {
	mock.lockListRecent.RLock()
	calls := mock.calls.ListRecent
	mock.lockListRecent.RUnlock()
	return calls
}

func (mock *notificationRepoMock) MarkReadBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if mock.MarkReadBeforeFunc == nil {
		panic("notificationRepoMock.MarkReadBeforeFunc: method is nil but notificationRepo.MarkReadBefore was just called")
	}
	mock.lockMarkReadBefore.Lock()
	mock.calls.MarkReadBefore = append(mock.calls.MarkReadBefore, struct{ Cutoff time.Time }{Cutoff: cutoff})
	mock.lockMarkReadBefore.Unlock()
	return mock.MarkReadBeforeFunc(ctx, cutoff)
}

func (mock *notificationRepoMock) MarkReadBeforeCalls() []struct{ Cutoff time.Time } {
	mock.lockMarkReadBefore.RLock()
	calls := mock.calls.MarkReadBefore
	mock.lockMarkReadBefore.RUnlock()
	return calls
}

func (mock *notificationRepoMock) Count(ctx context.Context) (int, error) {
	if mock.CountFunc == nil {
		panic("notificationRepoMock.CountFunc: method is nil but notificationRepo.Count was just called")
	}
	mock.lockCount.Lock()
	mock.calls.Count = append(mock.calls.Count, struct{}{})
	mock.lockCount.Unlock()
	return mock.CountFunc(ctx)
}

var _ postRepo = &postRepoMock{}

type postRepoMock struct {
	UpsertBatchFunc func(ctx context.Context, posts []*domain.Post) error
	GetByURIsFunc   func(ctx context.Context, uris []string) ([]*domain.Post, error)

	calls struct {
		UpsertBatch []struct {
			Posts []*domain.Post
		}
		GetByURIs []struct {
			URIs []string
		}
	}
	lockUpsertBatch sync.RWMutex
	lockGetByURIs   sync.RWMutex
}

func (mock *postRepoMock) UpsertBatch(ctx context.Context, posts []*domain.Post) error {
	if mock.UpsertBatchFunc == nil {
		panic("postRepoMock.UpsertBatchFunc: method is nil but postRepo.UpsertBatch was just called")
	}
	mock.lockUpsertBatch.Lock()
	mock.calls.UpsertBatch = append(mock.calls.UpsertBatch, struct{ Posts []*domain.Post }{Posts: posts})
	mock.lockUpsertBatch.Unlock()
	return mock.UpsertBatchFunc(ctx, posts)
}

func (mock *postRepoMock) UpsertBatchCalls() []struct{ Posts []*domain.Post } {
	mock.lockUpsertBatch.RLock()
	calls := mock.calls.UpsertBatch
	mock.lockUpsertBatch.RUnlock()
	return calls
}

func (mock *postRepoMock) GetByURIs(ctx context.Context, uris []string) ([]*domain.Post, error) {
	if mock.GetByURIsFunc == nil {
		panic("postRepoMock.GetByURIsFunc: method is nil but postRepo.GetByURIs was just called")
	}
	mock.lockGetByURIs.Lock()
	mock.calls.GetByURIs = append(mock.calls.GetByURIs, struct{ URIs []string }{URIs: uris})
	mock.lockGetByURIs.Unlock()
	return mock.GetByURIsFunc(ctx, uris)
}

func (mock *postRepoMock) GetByURIsCalls() []struct{ URIs []string } {
	mock.lockGetByURIs.RLock()
	calls := mock.calls.GetByURIs
	mock.lockGetByURIs.RUnlock()
	return calls
}

var _ syncStateRepo = &syncStateRepoMock{}

type syncStateRepoMock struct {
	GetFunc  func(ctx context.Context, accountDID string) (*domain.SyncState, error)
	SaveFunc func(ctx context.Context, s *domain.SyncState) error

	calls struct {
		Get []struct {
			AccountDID string
		}
		Save []struct {
			S *domain.SyncState
		}
	}
	lockGet  sync.RWMutex
	lockSave sync.RWMutex
}

func (mock *syncStateRepoMock) Get(ctx context.Context, accountDID string) (*domain.SyncState, error) {
	if mock.GetFunc == nil {
		panic("syncStateRepoMock.GetFunc: method is nil but syncStateRepo.Get was just called")
	}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, struct{ AccountDID string }{AccountDID: accountDID})
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx, accountDID)
}

func (mock *syncStateRepoMock) Save(ctx context.Context, s *domain.SyncState) error {
	if mock.SaveFunc == nil {
		panic("syncStateRepoMock.SaveFunc: method is nil but syncStateRepo.Save was just called")
	}
	mock.lockSave.Lock()
	mock.calls.Save = append(mock.calls.Save, struct{ S *domain.SyncState }{S: s})
	mock.lockSave.Unlock()
	return mock.SaveFunc(ctx, s)
}

func (mock *syncStateRepoMock) SaveCalls() []struct{ S *domain.SyncState } {
	mock.lockSave.RLock()
	calls := mock.calls.Save
	mock.lockSave.RUnlock()
	return calls
}
