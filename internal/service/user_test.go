package service

import (
	"Orion_Shorts/internal/testutil"
	"Orion_Shorts/pkg/token"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) userService(storage MediaStorage) UserService {
	return NewUserService(e.repos.UserRepo, token.NewManager("test-secret", time.Hour, 24*time.Hour), storage)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.userService(testutil.NewMemoryStorage())

	registered, err := svc.Register(ctx, "Alice", "Alice@Example.com", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, "alice", registered.User.Username)
	assert.Equal(t, "alice@example.com", registered.User.Email)
	assert.NotEqual(t, "pa55word", registered.User.Password)
	require.NotNil(t, registered.Tokens)
	assert.NotEmpty(t, registered.Tokens.Access)

	loggedIn, err := svc.Login(ctx, "ALICE", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "pa55word")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	pair, err := svc.Refresh(ctx, loggedIn.Tokens.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)

	_, err = svc.Refresh(ctx, loggedIn.Tokens.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.userService(testutil.NewMemoryStorage())

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pa55word")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ALICE", "other@example.com", "pa55word")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")

	_, err = svc.Register(ctx, "bob", "ALICE@example.com", "pa55word")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}

func TestProfileStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, env.db, "author")
	fan := testutil.CreateUser(t, env.db, "fan")
	other := testutil.CreateUser(t, env.db, "other")
	first := testutil.CreateVideo(t, env.db, author.ID, "first", time.Time{})
	second := testutil.CreateVideo(t, env.db, author.ID, "second", time.Time{})
	testutil.Follow(t, env.db, fan.ID, author.ID)
	testutil.Follow(t, env.db, other.ID, author.ID)
	testutil.Follow(t, env.db, author.ID, fan.ID)

	likes := env.likeService()
	for _, u := range []uint64{fan.ID, other.ID} {
		_, err := likes.ToggleLike(ctx, u, first.ID)
		require.NoError(t, err)
	}
	_, err := likes.ToggleLike(ctx, fan.ID, second.ID)
	require.NoError(t, err)

	profile, err := env.userService(testutil.NewMemoryStorage()).GetProfile(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.Stats.FollowerCount)
	assert.Equal(t, int64(1), profile.Stats.FollowingCount)
	assert.Equal(t, int64(2), profile.Stats.VideoCount)
	assert.Equal(t, int64(3), profile.Stats.HeartCount)

	_, err = env.userService(testutil.NewMemoryStorage()).GetProfile(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchOrdersByFollowerCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, env.db, "alice")
	alicia := testutil.CreateUser(t, env.db, "alicia")
	bob := testutil.CreateUser(t, env.db, "bob")
	carol := testutil.CreateUser(t, env.db, "carol")
	testutil.Follow(t, env.db, bob.ID, alicia.ID)
	testutil.Follow(t, env.db, carol.ID, alicia.ID)

	page, err := env.userService(testutil.NewMemoryStorage()).Search(ctx, "ALI", PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, alicia.ID, page.Items[0].ID)
	assert.Equal(t, int64(2), page.Items[0].Stats.FollowerCount)
	assert.Equal(t, alice.ID, page.Items[1].ID)
}

func TestUpdateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, env.db, "alice")
	testutil.CreateUser(t, env.db, "bob")
	svc := env.userService(testutil.NewMemoryStorage())

	_, err := svc.UpdateUsername(ctx, alice.ID, "Bob")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	updated, err := svc.UpdateUsername(ctx, alice.ID, "Alice2")
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)

	profile, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", profile.Username)
}

func TestUpdateProfilePictureReplacesObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, env.db, "alice")
	storage := testutil.NewMemoryStorage()
	svc := env.userService(storage)

	first, err := svc.UpdateProfilePicture(ctx, alice.ID, Upload{
		Filename: "me.png", Size: 3, ContentType: "image/png", Reader: strings.NewReader("png"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ProfilePicture, "profile_pictures/"))
	oldKey := first.ProfilePicture

	second, err := svc.UpdateProfilePicture(ctx, alice.ID, Upload{
		Filename: "me.jpg", Size: 3, ContentType: "image/jpeg", Reader: strings.NewReader("jpg"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, second.ProfilePicture)
	assert.False(t, storage.Has(oldKey))
	assert.True(t, storage.Has(second.ProfilePicture))

	_, err = svc.UpdateProfilePicture(ctx, alice.ID, Upload{
		Filename: "me.mp4", Size: 3, ContentType: "video/mp4", Reader: strings.NewReader("mp4"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, storage.Len())
}
