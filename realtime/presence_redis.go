package realtime

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	redisUserKeyPrefix = "presence:user:"
	redisIndexKey      = "presence:users"
)

// RedisRegistry is the swap-in for running more than one gateway process.
// Connection ids are only meaningful to the process that minted them, so a
// hub resolves them back to local clients and ignores foreign ones.
type RedisRegistry struct {
	rdb *redis.Client
}

func NewRedisRegistry(addr string) *RedisRegistry {
	return &RedisRegistry{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (r *RedisRegistry) Register(ctx context.Context, userID uuid.UUID, connID string) (bool, error) {
	key := redisUserKeyPrefix + userID.String()
	pipe := r.rdb.TxPipeline()
	pipe.SAdd(ctx, key, connID)
	card := pipe.SCard(ctx, key)
	pipe.SAdd(ctx, redisIndexKey, userID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return false, errors.Wrap(err, "registering presence")
	}
	return card.Val() == 1, nil
}

func (r *RedisRegistry) Unregister(ctx context.Context, userID uuid.UUID, connID string) (bool, error) {
	key := redisUserKeyPrefix + userID.String()
	pipe := r.rdb.TxPipeline()
	pipe.SRem(ctx, key, connID)
	card := pipe.SCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, errors.Wrap(err, "unregistering presence")
	}
	if card.Val() == 0 {
		if err := r.rdb.SRem(ctx, redisIndexKey, userID.String()).Err(); err != nil {
			return true, errors.Wrap(err, "pruning presence index")
		}
		return true, nil
	}
	return false, nil
}

func (r *RedisRegistry) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := r.rdb.SCard(ctx, redisUserKeyPrefix+userID.String()).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking presence")
	}
	return n > 0, nil
}

func (r *RedisRegistry) Connections(ctx context.Context, userID uuid.UUID) ([]string, error) {
	conns, err := r.rdb.SMembers(ctx, redisUserKeyPrefix+userID.String()).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing connections")
	}
	return conns, nil
}

func (r *RedisRegistry) OnlineUsers(ctx context.Context) ([]uuid.UUID, error) {
	members, err := r.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing online users")
	}
	users := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			continue
		}
		users = append(users, id)
	}
	return users, nil
}

func (r *RedisRegistry) Clear(ctx context.Context) error {
	members, err := r.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return errors.Wrap(err, "listing online users")
	}
	pipe := r.rdb.TxPipeline()
	for _, m := range members {
		pipe.Del(ctx, redisUserKeyPrefix+m)
	}
	pipe.Del(ctx, redisIndexKey)
	_, err = pipe.Exec(ctx)
	return errors.Wrap(err, "clearing presence")
}
