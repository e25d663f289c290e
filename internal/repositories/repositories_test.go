package repositories_test

import (
	"testing"
	"time"

	"estate_backend/internal/models"
	"estate_backend/internal/repositories"
	"estate_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyRepository_TransitionIsConditional(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewPropertyRepository()

	agent := testutil.CreateUser(t, db, "Agent", "agent@estate.test", "password123", models.UserRoleAgent)
	admin := testutil.CreateUser(t, db, "Admin", "admin@estate.test", "password123", models.UserRoleAdmin)
	p := testutil.CreateProperty(t, db, agent.ID, "Test Villa", models.PropertyStatusPending)

	ok, err := repo.Transition(db, p.ID, models.PropertyStatusPending, models.PropertyStatusApproved, &admin.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	// второй переход из pending уже не срабатывает
	ok, err = repo.Transition(db, p.ID, models.PropertyStatusPending, models.PropertyStatusRejected, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusApproved, stored.Status)
	require.NotNil(t, stored.ApprovedBy)
	assert.Equal(t, admin.ID, *stored.ApprovedBy)
	assert.NotNil(t, stored.ApprovedAt)
}

func TestPropertyRepository_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewPropertyRepository()
	agent := testutil.CreateUser(t, db, "Agent", "agent@estate.test", "password123", models.UserRoleAgent)

	cheap := testutil.CreateProperty(t, db, agent.ID, "Cheap Flat", models.PropertyStatusApproved)
	villa := testutil.CreateProperty(t, db, agent.ID, "Sea Villa", models.PropertyStatusApproved)
	testutil.CreateProperty(t, db, agent.ID, "Hidden House", models.PropertyStatusPending)

	require.NoError(t, db.Model(cheap).Updates(map[string]interface{}{"price": 50000, "bedrooms": 1}).Error)
	require.NoError(t, db.Model(villa).Updates(map[string]interface{}{"price": 900000, "bedrooms": 5, "is_smart_home": true}).Error)

	items, total, err := repo.List(db, repositories.PropertyFilter{Status: models.PropertyStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	minPrice := 100000.0
	items, _, err = repo.List(db, repositories.PropertyFilter{Status: models.PropertyStatusApproved, MinPrice: &minPrice})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, villa.ID, items[0].ID)

	smart := true
	items, _, err = repo.List(db, repositories.PropertyFilter{Status: models.PropertyStatusApproved, IsSmartHome: &smart})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Sea Villa", items[0].Title)

	items, _, err = repo.List(db, repositories.PropertyFilter{Search: "flat"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, cheap.ID, items[0].ID)

	items, total, err = repo.List(db, repositories.PropertyFilter{Paging: repositories.Paging{Page: 2, PerPage: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 1)
}

func TestBlogPostRepository_SlugLookups(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewBlogPostRepository()
	author := testutil.CreateUser(t, db, "Author", "author@estate.test", "password123", models.UserRoleAgent)

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	for _, post := range []*models.BlogPost{
		{UserID: author.ID, Title: "Smart homes", Slug: "smart-homes-2023", Content: "a", Status: models.BlogStatusPublished, PublishedAt: &older},
		{UserID: author.ID, Title: "Smart homes", Slug: "smart-homes-2024", Content: "b", Status: models.BlogStatusPublished, PublishedAt: &newer},
		{UserID: author.ID, Title: "Smart homes", Slug: "smart-homes-draft", Content: "c", Status: models.BlogStatusDraft},
	} {
		require.NoError(t, repo.Create(db, post))
	}

	found, err := repo.FindPublishedBySlugPrefix(db, "smart-homes")
	require.NoError(t, err)
	assert.Equal(t, "smart-homes-2024", found.Slug)

	exists, err := repo.SlugExists(db, "smart-homes-2023", "")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(db, &models.BlogPost{UserID: author.ID, Title: "Dup", Slug: "smart-homes-2023", Content: "x", Status: models.BlogStatusDraft})
	assert.ErrorIs(t, err, repositories.ErrSlugTaken)

	_, err = repo.FindBySlug(db, "nope")
	assert.ErrorIs(t, err, repositories.ErrBlogPostNotFound)
}

func TestNotificationRepository_ScopedToOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewNotificationRepository()
	alice := testutil.CreateUser(t, db, "Alice", "alice@estate.test", "password123", models.UserRoleUser)
	bob := testutil.CreateUser(t, db, "Bob", "bob@estate.test", "password123", models.UserRoleUser)

	n := &models.Notification{UserID: alice.ID, Type: "test", Title: "Hello"}
	require.NoError(t, repo.Create(db, n))
	require.NoError(t, repo.Create(db, &models.Notification{UserID: alice.ID, Type: "test", Title: "Second"}))

	_, err := repo.FindForUser(db, n.ID, bob.ID)
	assert.ErrorIs(t, err, repositories.ErrNotificationNotFound)
	assert.ErrorIs(t, repo.MarkAsRead(db, n.ID, bob.ID, time.Now()), repositories.ErrNotificationNotFound)

	require.NoError(t, repo.MarkAsRead(db, n.ID, alice.ID, time.Now()))
	unread, err := repo.CountUnread(db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	updated, err := repo.MarkAllAsRead(db, alice.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	assert.ErrorIs(t, repo.Delete(db, n.ID, bob.ID), repositories.ErrNotificationNotFound)
	assert.NoError(t, repo.Delete(db, n.ID, alice.ID))
}

func TestPushSubscriptionRepository_UpsertByEndpoint(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewPushSubscriptionRepository()

	first := &models.PushSubscription{Kind: models.PushKindWeb, Endpoint: "https://push.test/1", P256dh: "k1", Auth: "a1"}
	require.NoError(t, repo.Upsert(db, first))

	second := &models.PushSubscription{Kind: models.PushKindWeb, Endpoint: "https://push.test/1", P256dh: "k2", Auth: "a2"}
	require.NoError(t, repo.Upsert(db, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "k2", second.P256dh)

	all, err := repo.FindAll(db)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.DeleteByEndpoint(db, "https://push.test/1"))
	assert.ErrorIs(t, repo.DeleteByEndpoint(db, "https://push.test/1"), repositories.ErrSubscriptionNotFound)
}

func TestOutboxRepository_ClaimDue(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repositories.NewOutboxRepository()

	due := &models.OutboxEvent{EventType: "a"}
	later := &models.OutboxEvent{EventType: "b", AvailableAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(db, due))
	require.NoError(t, repo.Create(db, later))

	events, err := repo.ClaimDue(db, time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, due.ID, events[0].ID)

	require.NoError(t, repo.MarkProcessed(db, due.ID, time.Now()))
	events, err = repo.ClaimDue(db, time.Now().Add(time.Second), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStatsRepository_Dashboard(t *testing.T) {
	db := testutil.NewTestDB(t)
	agent := testutil.CreateUser(t, db, "Agent", "agent@estate.test", "password123", models.UserRoleAgent)
	testutil.CreateUser(t, db, "Admin", "admin@estate.test", "password123", models.UserRoleAdmin)
	testutil.CreateProperty(t, db, agent.ID, "One", models.PropertyStatusPending)
	testutil.CreateProperty(t, db, agent.ID, "Two", models.PropertyStatusPending)
	testutil.CreateProperty(t, db, agent.ID, "Three", models.PropertyStatusApproved)

	stats, err := repositories.NewStatsRepository().Dashboard(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.PropertiesByStatus["pending"])
	assert.Equal(t, int64(1), stats.PropertiesByStatus["approved"])
	assert.Equal(t, int64(1), stats.UsersByRole["admin"])
	assert.Equal(t, int64(0), stats.PublishedPosts)
}
