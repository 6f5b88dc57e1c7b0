package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/pager/pkg/diary"
)

// RedisStore is a diary.Store backed by Redis.
// It uses a simple key structure:
//
//	<prefix>food:<id>        => gob-encoded food payload
//	<prefix>idx:created      => ZSET of zero-padded ids scored by created_at millis
//	<prefix>seq              => id counter
//
// Zero-padding the members makes ZREVRANGE order ties on created_at by id
// descending, matching the SQL backends.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ diary.Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore.
// prefix is optional but recommended (e.g. "pager:").
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "pager:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) keyFood(id int64) string {
	return s.prefix + "food:" + strconv.FormatInt(id, 10)
}

func (s *RedisStore) keyCreated() string {
	return s.prefix + "idx:created"
}

func (s *RedisStore) keySeq() string {
	return s.prefix + "seq"
}

func member(id int64) string {
	return fmt.Sprintf("%020d", id)
}

func parseMember(m string) (int64, error) {
	return strconv.ParseInt(m, 10, 64)
}

func (s *RedisStore) Insert(ctx context.Context, f diary.Food) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	if f.ID == 0 {
		id, err := s.client.Incr(ctx, s.keySeq()).Result()
		if err != nil {
			return 0, err
		}
		f.ID = id
	}

	if err := s.write(ctx, f); err != nil {
		return 0, err
	}
	return f.ID, nil
}

func (s *RedisStore) Update(ctx context.Context, f diary.Food) error {
	if err := f.Validate(); err != nil {
		return err
	}

	n, err := s.client.Exists(ctx, s.keyFood(f.ID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return diary.ErrEntryNotFound
	}
	return s.write(ctx, f)
}

func (s *RedisStore) write(ctx context.Context, f diary.Food) error {
	data, err := EncodeFood(f)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keyFood(f.ID), data, 0)
	pipe.ZAdd(ctx, s.keyCreated(), redis.Z{
		Score:  float64(toMillis(f.CreatedAt)),
		Member: member(f.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, id int64) (diary.Food, error) {
	data, err := s.client.Get(ctx, s.keyFood(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return diary.Food{}, diary.ErrEntryNotFound
		}
		return diary.Food{}, err
	}
	return DecodeFood(data)
}

func (s *RedisStore) Delete(ctx context.Context, id int64) error {
	return s.DeleteMany(ctx, []int64{id})
}

func (s *RedisStore) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = s.keyFood(id)
		members[i] = member(id)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, s.keyCreated(), members...)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) ListAll(ctx context.Context) ([]diary.Food, error) {
	members, err := s.client.ZRevRange(ctx, s.keyCreated(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, members)
}

func (s *RedisStore) ListPaginated(ctx context.Context, offset, limit int) ([]diary.Food, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []diary.Food{}, nil
	}
	members, err := s.client.ZRevRange(ctx, s.keyCreated(), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, members)
}

func (s *RedisStore) CountAll(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.keyCreated()).Result()
	return int(n), err
}

func (s *RedisStore) DailyStats(ctx context.Context, r diary.TimeRange) (diary.DailyStats, error) {
	lo, hi := millisRange(r)
	members, err := s.client.ZRangeByScore(ctx, s.keyCreated(), &redis.ZRangeBy{
		Min: strconv.FormatInt(lo, 10),
		Max: strconv.FormatInt(hi, 10),
	}).Result()
	if err != nil {
		return diary.DailyStats{}, err
	}

	entries, err := s.load(ctx, members)
	if err != nil {
		return diary.DailyStats{}, err
	}
	return diary.Sum(entries), nil
}

// load fetches payloads for index members in order. Members whose payload
// vanished between the index read and the fetch are skipped.
func (s *RedisStore) load(ctx context.Context, members []string) ([]diary.Food, error) {
	out := make([]diary.Food, 0, len(members))
	if len(members) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(members))
	for i, m := range members {
		id, err := parseMember(m)
		if err != nil {
			return nil, fmt.Errorf("redis store: bad index member %q: %w", m, err)
		}
		cmds[i] = pipe.Get(ctx, s.keyFood(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		f, err := DecodeFood(data)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
