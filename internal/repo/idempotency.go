package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// IdempotencyEntry records which session committed which reservation under a key.
type IdempotencyEntry struct {
	SessionID     uuid.UUID
	ReservationID int64
}

// IdempotencyRepo remembers which reservation an Idempotency-Key produced so a
// repeated submit can return the existing record instead of booking twice.
type IdempotencyRepo interface {
	// Lookup returns the entry stored for key and whether one exists.
	Lookup(ctx context.Context, key string) (IdempotencyEntry, bool, error)

	// Remember stores entry for key. An existing entry is kept.
	Remember(ctx context.Context, key string, entry IdempotencyEntry) error
}

// redisIdempotencyRepo is the Redis implementation of IdempotencyRepo.
// Keys are hashed so client-supplied values never appear in Redis verbatim.
type redisIdempotencyRepo struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisIdempotencyRepo constructs an IdempotencyRepo whose entries expire after ttl.
func NewRedisIdempotencyRepo(client redis.Cmdable, ttl time.Duration) IdempotencyRepo {
	return &redisIdempotencyRepo{client: client, ttl: ttl}
}

func (r *redisIdempotencyRepo) Lookup(ctx context.Context, key string) (IdempotencyEntry, bool, error) {
	val, err := r.client.Get(ctx, idempotencyKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return IdempotencyEntry{}, false, nil
	}
	if err != nil {
		return IdempotencyEntry{}, false, fmt.Errorf("repo.IdempotencyRepo.Lookup: %w", err)
	}
	entry, err := parseEntry(val)
	if err != nil {
		return IdempotencyEntry{}, false, fmt.Errorf("repo.IdempotencyRepo.Lookup: corrupt entry: %w", err)
	}
	return entry, true, nil
}

func (r *redisIdempotencyRepo) Remember(ctx context.Context, key string, entry IdempotencyEntry) error {
	val := entry.SessionID.String() + "|" + strconv.FormatInt(entry.ReservationID, 10)
	err := r.client.SetNX(ctx, idempotencyKey(key), val, r.ttl).Err()
	if err != nil {
		return fmt.Errorf("repo.IdempotencyRepo.Remember: %w", err)
	}
	return nil
}

func idempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "reservation:idempotency:" + hex.EncodeToString(sum[:])
}

// parseEntry decodes the "<session id>|<reservation id>" value written by Remember.
func parseEntry(val string) (IdempotencyEntry, error) {
	sid, rid, ok := strings.Cut(val, "|")
	if !ok {
		return IdempotencyEntry{}, fmt.Errorf("missing separator in %q", val)
	}
	sessionID, err := uuid.Parse(sid)
	if err != nil {
		return IdempotencyEntry{}, err
	}
	reservationID, err := strconv.ParseInt(rid, 10, 64)
	if err != nil {
		return IdempotencyEntry{}, err
	}
	return IdempotencyEntry{SessionID: sessionID, ReservationID: reservationID}, nil
}
