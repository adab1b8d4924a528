package pack

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
	"github.com/freewebtopdf/sticker-certifier/internal/policy"
)

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) Validate(ctx context.Context, pack *domain.StickerPack) error {
	args := m.Called(ctx, pack.Identifier)
	return args.Error(0)
}

func packsNamed(ids ...string) []domain.StickerPack {
	packs := make([]domain.StickerPack, len(ids))
	for i, id := range ids {
		packs[i] = domain.StickerPack{Identifier: id}
	}
	return packs
}

func TestCertifier_SequentialStopsAtFirstFailure(t *testing.T) {
	v := new(mockValidator)
	failure := &domain.ValidationError{PackIdentifier: "b", Reason: "sticker count"}
	v.On("Validate", mock.Anything, "a").Return(nil).Once()
	v.On("Validate", mock.Anything, "b").Return(failure).Once()

	err := NewCertifier(v, 1).Certify(context.Background(), packsNamed("a", "b", "c"))

	assert.Same(t, failure, err)
	v.AssertExpectations(t)
	v.AssertNotCalled(t, "Validate", mock.Anything, "c")
}

func TestCertifier_ParallelReportsFirstPackInOrder(t *testing.T) {
	v := new(mockValidator)
	first := &domain.ValidationError{PackIdentifier: "b", Reason: "first"}
	second := &domain.ValidationError{PackIdentifier: "d", Reason: "second"}

	// the later pack fails first in wall-clock time
	v.On("Validate", mock.Anything, "a").Return(nil)
	v.On("Validate", mock.Anything, "b").After(20 * time.Millisecond).Return(first)
	v.On("Validate", mock.Anything, "c").Return(nil)
	v.On("Validate", mock.Anything, "d").Return(second)

	err := NewCertifier(v, 4).Certify(context.Background(), packsNamed("a", "b", "c", "d"))

	assert.Same(t, first, err)
	v.AssertNumberOfCalls(t, "Validate", 4)
}

type countingValidator struct {
	running int32
	peak    int32
}

func (c *countingValidator) Validate(ctx context.Context, pack *domain.StickerPack) error {
	n := atomic.AddInt32(&c.running, 1)
	for {
		peak := atomic.LoadInt32(&c.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&c.peak, peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt32(&c.running, -1)
	pack.TotalSize = 1
	return nil
}

func TestCertifier_ParallelRespectsLimit(t *testing.T) {
	v := &countingValidator{}
	packs := packsNamed("a", "b", "c", "d", "e", "f", "g", "h")

	require.NoError(t, NewCertifier(v, 3).Certify(context.Background(), packs))

	assert.LessOrEqual(t, atomic.LoadInt32(&v.peak), int32(3))
	for _, p := range packs {
		assert.Equal(t, int64(1), p.TotalSize)
	}
}

func TestService_ParseAndCertify(t *testing.T) {
	data := []byte(manifestJSON(object(packFields("cats")...)))

	parsed, err := NewManifestParser().ParseBytes(data)
	require.NoError(t, err)
	store := storeFor(parsed[0])

	svc := NewService(NewManifestParser(), NewCertifier(NewValidator(store, policy.V2()), 2))

	packs, err := svc.Parse(context.Background(), data)
	require.NoError(t, err)
	assert.Zero(t, packs[0].TotalSize)

	packs, err = svc.Certify(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, packs, 1)
	assert.Equal(t, int64(3*len(stillSticker)), packs[0].TotalSize)

	_, err = svc.Certify(context.Background(), []byte(`{"sticker_packs": []}`))
	assert.True(t, domain.IsStructuralError(err))

	store.Delete("cats", "01.webp")
	_, err = svc.Certify(context.Background(), data)
	assert.True(t, domain.IsValidationError(err))
	assert.True(t, errors.Is(err, domain.ErrAssetNotFound))
}
