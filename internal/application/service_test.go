package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcmp123/marketplace/internal/domain/entity"
	repo "github.com/rcmp123/marketplace/internal/domain/repository"
	"github.com/rcmp123/marketplace/internal/infrastructure/imagestore"
	"github.com/rcmp123/marketplace/internal/testutil"
	"github.com/rcmp123/marketplace/pkg/helpers"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.Event
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, body.(entity.Event))
	return nil
}

type failingImages struct{}

func (failingImages) Save(context.Context, string, string, int64, io.Reader) (string, error) {
	return "", errors.New("disk full")
}

// brokenTxStore reads through to a real store but fails every transaction.
type brokenTxStore struct {
	repo.Store
}

func (brokenTxStore) WithTx(context.Context, func(repo.Tx) error) error {
	return errors.New("database is locked")
}

func newListingService(t *testing.T) (*ListingService, string, *recordingPublisher) {
	t.Helper()
	dir := t.TempDir()
	images, err := imagestore.NewLocal(dir, "/images")
	require.NoError(t, err)
	pub := &recordingPublisher{}
	return NewListingService(testutil.OpenStore(t), images, pub, testutil.QuietLogger()), dir, pub
}

func jpeg(name string, b []byte) *ImageUpload {
	return &ImageUpload{Filename: name, ContentType: "image/jpeg", Size: int64(len(b)), Content: bytes.NewReader(b)}
}

func TestRegister(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewUserService(testutil.OpenStore(t), pub, testutil.QuietLogger())
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Positive(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "s3cret", u.HashedPassword)
	assert.True(t, helpers.CompareHashAndPassword(u.HashedPassword, "s3cret"))

	stored, err := svc.Store.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.HashedPassword, stored.HashedPassword)

	require.Len(t, pub.events, 1)
	assert.Equal(t, entity.EventUserRegistered, pub.events[0].Type)
	assert.Equal(t, u.ID, pub.events[0].UserID)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := NewUserService(testutil.OpenStore(t), nil, testutil.QuietLogger())
	ctx := context.Background()

	first, err := svc.Register(ctx, "bob", "one")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "two")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	stored, err := svc.Store.Users().GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.True(t, helpers.CompareHashAndPassword(stored.HashedPassword, "one"))
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	svc := NewUserService(testutil.OpenStore(t), nil, testutil.QuietLogger())
	ctx := context.Background()

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, "carol", "pw")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrUsernameTaken)
	}
	assert.Equal(t, 1, ok)
}

func TestRegister_InvalidInput(t *testing.T) {
	svc := NewUserService(testutil.OpenStore(t), nil, testutil.QuietLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "pw")
	assert.ErrorIs(t, err, ErrMissingCredential)
	_, err = svc.Register(ctx, "dave", "")
	assert.ErrorIs(t, err, ErrMissingCredential)
	_, err = svc.Register(ctx, "dave", strings.Repeat("p", helpers.MaxPasswordBytes+1))
	assert.ErrorIs(t, err, helpers.ErrPasswordTooLong)

	_, err = svc.Store.Users().GetByUsername(ctx, "dave")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestCreateListing(t *testing.T) {
	svc, dir, pub := newListingService(t)
	ctx := context.Background()
	payload := []byte("\xff\xd8\xff\xe0 not really a jpeg")

	l, err := svc.CreateListing(ctx, CreateListingInput{
		Title:       "Bike",
		Description: "Red bike",
		Price:       120.5,
		SellerID:    42,
		Image:       jpeg("photo.jpg", payload),
	})
	require.NoError(t, err)
	assert.Positive(t, l.ID)
	assert.False(t, l.Sold)
	assert.True(t, strings.HasPrefix(l.ImagePath, "/images/"))
	assert.True(t, strings.HasSuffix(l.ImagePath, "_photo.jpg"))

	onDisk, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(l.ImagePath, "/images/")))
	require.NoError(t, err)
	assert.Equal(t, payload, onDisk)

	got, err := svc.GetListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l, got)

	require.Len(t, pub.events, 1)
	assert.Equal(t, entity.EventListingCreated, pub.events[0].Type)
	assert.Equal(t, l.ID, pub.events[0].Listing.ID)
}

func TestCreateListing_SameFilenameConcurrently(t *testing.T) {
	svc, dir, _ := newListingService(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	paths := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := svc.CreateListing(ctx, CreateListingInput{
				Title: "x", Price: 1, SellerID: 1,
				Image: jpeg("photo.jpg", []byte{byte(i)}),
			})
			if assert.NoError(t, err) {
				paths[i] = l.ImagePath
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i, p := range paths {
		require.NotEmpty(t, p)
		assert.False(t, seen[p], "duplicate image path %s", p)
		seen[p] = true
		b, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(p, "/images/")))
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(i)}, b)
	}
}

func TestCreateListing_MissingImage(t *testing.T) {
	svc, dir, pub := newListingService(t)

	_, err := svc.CreateListing(context.Background(), CreateListingInput{Title: "x", Price: 1, SellerID: 1})
	assert.ErrorIs(t, err, ErrImageRequired)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, pub.events)
}

func TestCreateListing_NonFinitePrice(t *testing.T) {
	svc, dir, pub := newListingService(t)
	ctx := context.Background()

	for _, price := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := svc.CreateListing(ctx, CreateListingInput{Title: "x", Price: price, SellerID: 1, Image: jpeg("a.jpg", []byte("a"))})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, pub.events)
	_, err = svc.GetListing(ctx, 1)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestCreateListing_ImageWriteFailureCreatesNoRow(t *testing.T) {
	store := testutil.OpenStore(t)
	pub := &recordingPublisher{}
	svc := NewListingService(store, failingImages{}, pub, testutil.QuietLogger())
	ctx := context.Background()

	_, err := svc.CreateListing(ctx, CreateListingInput{Title: "x", Price: 1, SellerID: 1, Image: jpeg("a.jpg", []byte("a"))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, err = svc.GetListing(ctx, 1)
	assert.ErrorIs(t, err, ErrListingNotFound)
	assert.Empty(t, pub.events)
}

func TestCreateListing_InsertFailureLogsOrphan(t *testing.T) {
	dir := t.TempDir()
	images, err := imagestore.NewLocal(dir, "/images")
	require.NoError(t, err)
	logger, hook := logtest.NewNullLogger()
	svc := NewListingService(brokenTxStore{Store: testutil.OpenStore(t)}, images, nil, logger)

	_, err = svc.CreateListing(context.Background(), CreateListingInput{Title: "x", Price: 1, SellerID: 1, Image: jpeg("b.jpg", []byte("b"))})
	require.Error(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Data["image_path"], "_b.jpg")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateListing_PublishFailureDoesNotFail(t *testing.T) {
	dir := t.TempDir()
	images, err := imagestore.NewLocal(dir, "/images")
	require.NoError(t, err)
	pub := &recordingPublisher{err: errors.New("channel closed")}
	svc := NewListingService(testutil.OpenStore(t), images, pub, testutil.QuietLogger())

	l, err := svc.CreateListing(context.Background(), CreateListingInput{Title: "x", Price: 1, SellerID: 1, Image: jpeg("c.jpg", []byte("c"))})
	require.NoError(t, err)
	assert.Positive(t, l.ID)
}

func TestCreateListing_DefaultsContentType(t *testing.T) {
	var gotType string
	images := imageFunc(func(_ context.Context, name, contentType string, _ int64, r io.Reader) (string, error) {
		gotType = contentType
		_, _ = io.Copy(io.Discard, r)
		return "/images/" + name, nil
	})
	svc := NewListingService(testutil.OpenStore(t), images, nil, testutil.QuietLogger())

	_, err := svc.CreateListing(context.Background(), CreateListingInput{
		Title: "x", Price: 1, SellerID: 1,
		Image: &ImageUpload{Filename: "blob", Content: strings.NewReader("z")},
	})
	require.NoError(t, err)
	assert.Equal(t, defaultImageContentType, gotType)
}

func TestGetListing_NotFound(t *testing.T) {
	svc, _, _ := newListingService(t)
	_, err := svc.GetListing(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

type imageFunc func(ctx context.Context, name, contentType string, size int64, r io.Reader) (string, error)

func (f imageFunc) Save(ctx context.Context, name, contentType string, size int64, r io.Reader) (string, error) {
	return f(ctx, name, contentType, size, r)
}

func TestNewImageName(t *testing.T) {
	a := NewImageName("photo.jpg")
	b := NewImageName("photo.jpg")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_photo.jpg"))
	assert.Len(t, a, 36+1+len("photo.jpg"))

	assert.True(t, strings.HasSuffix(NewImageName("../../etc/passwd"), "_passwd"))
	assert.True(t, strings.HasSuffix(NewImageName(`C:\Users\me\cat.png`), "_cat.png"))
	assert.True(t, strings.HasSuffix(NewImageName(""), "_upload"))
}
