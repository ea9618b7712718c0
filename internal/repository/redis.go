package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Shivanand-hulikatti/room-booking/internal/model"
)

const blackoutKeyPrefix = "blackout:"

// RedisBlackoutStore keeps one hash per date: blackout:<date> -> room id -> "1"/"0".
// HSET on a single field is atomic, which gives the per-room merge for free.
type RedisBlackoutStore struct {
	rdb *redis.Client
}

// NewRedisBlackoutStore constructs a RedisBlackoutStore.
func NewRedisBlackoutStore(rdb *redis.Client) *RedisBlackoutStore {
	return &RedisBlackoutStore{rdb: rdb}
}

func blackoutKey(date string) string {
	return blackoutKeyPrefix + date
}

// Load scans every blackout hash.
func (s *RedisBlackoutStore) Load(ctx context.Context) (model.BlackoutMap, error) {
	m := model.BlackoutMap{}
	iter := s.rdb.Scan(ctx, 0, blackoutKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		date := strings.TrimPrefix(iter.Val(), blackoutKeyPrefix)
		day, err := s.ForDate(ctx, date)
		if err != nil {
			return nil, err
		}
		if len(day) > 0 {
			m[date] = day
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan blackout keys: %w", err)
	}
	return m, nil
}

// ForDate reads the hash for date. A missing key is an empty map.
func (s *RedisBlackoutStore) ForDate(ctx context.Context, date string) (map[int]bool, error) {
	fields, err := s.rdb.HGetAll(ctx, blackoutKey(date)).Result()
	if err != nil {
		return nil, fmt.Errorf("read blackouts for %s: %w", date, err)
	}
	day := make(map[int]bool, len(fields))
	for k, v := range fields {
		roomID, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("blackout %s: bad room id %q", date, k)
		}
		closed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("blackout %s room %d: bad flag %q", date, roomID, v)
		}
		day[roomID] = closed
	}
	return day, nil
}

// Upsert sets one field of the date hash.
func (s *RedisBlackoutStore) Upsert(ctx context.Context, date string, roomID int, closed bool) error {
	v := "0"
	if closed {
		v = "1"
	}
	if err := s.rdb.HSet(ctx, blackoutKey(date), strconv.Itoa(roomID), v).Err(); err != nil {
		return fmt.Errorf("upsert blackout: %w", err)
	}
	return nil
}
