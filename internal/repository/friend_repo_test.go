package repository_test

import (
	"context"
	"testing"

	"voidspace/backend/internal/apperr"
	"voidspace/backend/internal/models"
	"voidspace/backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptCreatesCanonicalEdge(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewFriendRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	// send from the higher id so canonicalization has to reorder
	require.NoError(t, repo.SendRequest(ctx, bob.ID, "alice", models.RequestKindFriend))

	requests, err := repo.ListIncoming(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, bob.ID, requests[0].FromID)

	require.NoError(t, repo.Resolve(ctx, requests[0].ID, alice.ID, true))

	var edges []models.Friendship
	require.NoError(t, db.Find(&edges).Error)
	require.Len(t, edges, 1)
	assert.Equal(t, alice.ID, edges[0].UserAID)
	assert.Equal(t, bob.ID, edges[0].UserBID)
	assert.False(t, edges[0].IsClose)

	// request consumed
	requests, err = repo.ListIncoming(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestAcceptIsIdempotentAcrossCrossedRequests(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewFriendRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	// both directions pending at once
	require.NoError(t, repo.SendRequest(ctx, alice.ID, "bob", models.RequestKindFriend))
	require.NoError(t, repo.SendRequest(ctx, bob.ID, "alice", models.RequestKindFriend))

	toBob, err := repo.ListIncoming(ctx, bob.ID)
	require.NoError(t, err)
	toAlice, err := repo.ListIncoming(ctx, alice.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Resolve(ctx, toBob[0].ID, bob.ID, true))
	require.NoError(t, repo.Resolve(ctx, toAlice[0].ID, alice.ID, true))

	var count int64
	require.NoError(t, db.Model(&models.Friendship{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeclineConsumesWithoutEdge(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewFriendRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	require.NoError(t, repo.SendRequest(ctx, alice.ID, "bob", models.RequestKindFriend))
	requests, err := repo.ListIncoming(ctx, bob.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Resolve(ctx, requests[0].ID, bob.ID, false))

	var count int64
	require.NoError(t, db.Model(&models.Friendship{}).Count(&count).Error)
	assert.Zero(t, count)

	requests, err = repo.ListIncoming(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestCloseUpgradeFlagsSameEdge(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewFriendRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	befriend(t, repo, alice, bob)

	edgeBefore, err := repo.Edge(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, repo.SendRequest(ctx, alice.ID, "bob", models.RequestKindClose))
	requests, err := repo.ListIncoming(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, models.RequestKindClose, requests[0].Kind)

	require.NoError(t, repo.Resolve(ctx, requests[0].ID, bob.ID, true))

	var edges []models.Friendship
	require.NoError(t, db.Find(&edges).Error)
	require.Len(t, edges, 1)
	assert.Equal(t, edgeBefore.ID, edges[0].ID)
	assert.True(t, edges[0].IsClose)
}

func TestSendRequestValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewFriendRepository(db)

	alice := createUser(t, db, "alice")
	_ = createUser(t, db, "bob")

	// self target
	err := repo.SendRequest(ctx, alice.ID, "alice", models.RequestKindFriend)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	// unknown target
	err = repo.SendRequest(ctx, alice.ID, "nobody", models.RequestKindFriend)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// duplicate pending
	require.NoError(t, repo.SendRequest(ctx, alice.ID, "bob", models.RequestKindFriend))
	err = repo.SendRequest(ctx, alice.ID, "bob", models.RequestKindFriend)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// close request requires an existing friendship
	err = repo.SendRequest(ctx, alice.ID, "bob", models.RequestKindClose)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestFriendRequestToExistingFriendConflicts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewFriendRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	befriend(t, repo, alice, bob)

	err := repo.SendRequest(ctx, alice.ID, "bob", models.RequestKindFriend)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// a close request is still allowed: it proposes an upgrade
	assert.NoError(t, repo.SendRequest(ctx, alice.ID, "bob", models.RequestKindClose))
}

func TestResolveRequiresTargetActor(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewFriendRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	require.NoError(t, repo.SendRequest(ctx, alice.ID, "bob", models.RequestKindFriend))
	requests, err := repo.ListIncoming(ctx, bob.ID)
	require.NoError(t, err)

	err = repo.Resolve(ctx, requests[0].ID, carol.ID, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = repo.Resolve(ctx, 9999, bob.ID, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCloseAcceptWithoutEdgeRollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewFriendRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	// a close request with no edge can only exist through a race; plant one
	req := models.FriendRequest{FromID: alice.ID, ToID: bob.ID, Kind: models.RequestKindClose}
	require.NoError(t, db.Create(&req).Error)

	err := repo.Resolve(ctx, req.ID, bob.ID, true)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// the whole transaction rolled back: request still pending, no edge
	requests, err := repo.ListIncoming(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, requests, 1)

	var count int64
	require.NoError(t, db.Model(&models.Friendship{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListFriendsIncludesCloseFlag(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := repository.NewFriendRepository(db)

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	befriend(t, repo, alice, bob)
	befriend(t, repo, carol, alice)
	upgrade(t, repo, alice, bob)

	friends, err := repo.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)

	byName := map[string]bool{}
	for _, f := range friends {
		byName[f.User.Username] = f.IsClose
	}
	assert.True(t, byName["bob"])
	assert.False(t, byName["carol"])

	count, err := repo.CountFriends(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

// befriend runs the full request/accept flow between two users.
func befriend(t *testing.T, repo *repository.FriendRepository, from, to *models.User) {
	t.Helper()
	sendAndAccept(t, repo, from, to, models.RequestKindFriend)
}

// upgrade runs the close-request flow for an existing friendship.
func upgrade(t *testing.T, repo *repository.FriendRepository, from, to *models.User) {
	t.Helper()
	sendAndAccept(t, repo, from, to, models.RequestKindClose)
}

func sendAndAccept(t *testing.T, repo *repository.FriendRepository, from, to *models.User, kind models.RequestKind) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.SendRequest(ctx, from.ID, to.Username, kind))

	requests, err := repo.ListIncoming(ctx, to.ID)
	require.NoError(t, err)
	for _, r := range requests {
		if r.FromID == from.ID && r.Kind == kind {
			require.NoError(t, repo.Resolve(ctx, r.ID, to.ID, true))
			return
		}
	}
	t.Fatalf("no pending %s request from %s to %s", kind, from.Username, to.Username)
}
