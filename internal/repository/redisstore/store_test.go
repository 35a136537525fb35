package redisstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
	"invoicedesk/internal/repository/redisstore"
)

func TestDraftStore_SaveAndGet(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := redisstore.NewDraftStore(rdb)
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d := domain.NewDraft("9844533035", now)
	d.Fields.VendorName = "Acme"
	data, err := json.Marshal(d)
	require.NoError(t, err)
	key := "invoicedesk:draft:" + d.ID.String()

	mock.ExpectSet(key, data, time.Hour).SetVal("OK")
	require.NoError(t, store.Save(ctx, d, time.Hour))

	mock.ExpectGet(key).SetVal(string(data))
	got, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, "Acme", got.Fields.VendorName)
	assert.Equal(t, domain.DraftStateCollectingInput, got.State)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftStore_Missing(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := redisstore.NewDraftStore(rdb)
	id := uuid.New()

	mock.ExpectGet("invoicedesk:draft:" + id.String()).RedisNil()
	_, err := store.Get(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	mock.ExpectDel("invoicedesk:draft:" + id.String()).SetVal(0)
	assert.ErrorIs(t, store.Delete(context.Background(), id), domain.ErrDraftNotFound)
}

func TestDraftStore_RedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := redisstore.NewDraftStore(rdb)
	id := uuid.New()

	mock.ExpectGet("invoicedesk:draft:" + id.String()).SetErr(errors.New("connection refused"))
	_, err := store.Get(context.Background(), id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestOTPStore_Flow(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := redisstore.NewOTPStore(rdb)
	ctx := context.Background()
	key := "invoicedesk:otp:9844533035"

	mock.ExpectHSet(key, "code_hash", "hash", "attempts", 0).SetVal(2)
	mock.ExpectExpire(key, 5*time.Minute).SetVal(true)
	require.NoError(t, store.Save(ctx, "9844533035", &port.OTPChallenge{CodeHash: "hash"}, 5*time.Minute))

	mock.ExpectHGetAll(key).SetVal(map[string]string{"code_hash": "hash", "attempts": "2"})
	got, err := store.Get(ctx, "9844533035")
	require.NoError(t, err)
	assert.Equal(t, &port.OTPChallenge{CodeHash: "hash", Attempts: 2}, got)

	mock.ExpectHIncrBy(key, "attempts", 1).SetVal(3)
	n, err := store.IncrementAttempts(ctx, "9844533035")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	mock.ExpectDel(key).SetVal(1)
	require.NoError(t, store.Delete(ctx, "9844533035"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOTPStore_Expired(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := redisstore.NewOTPStore(rdb)

	mock.ExpectHGetAll("invoicedesk:otp:9844533035").SetVal(map[string]string{})
	_, err := store.Get(context.Background(), "9844533035")
	assert.ErrorIs(t, err, domain.ErrOTPExpired)
}
