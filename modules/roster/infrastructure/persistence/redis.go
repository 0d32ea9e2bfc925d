package persistence

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
	"github.com/hotelstaff/roster/modules/roster/domain/entities/vacation"
)

const redisPrefix = "roster"

// OpenRedis parses a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

// redisKeys names the keys of one collection: a JSON document per record
// and a sorted set of ids scored by id, which gives the stored order.
type redisKeys struct {
	prefix     string
	collection string
}

func (k redisKeys) record(id int64) string {
	return k.prefix + ":" + k.collection + ":" + strconv.FormatInt(id, 10)
}

func (k redisKeys) index() string {
	return k.prefix + ":" + k.collection + ":index"
}

type redisCollection[T any] struct {
	client   *redis.Client
	keys     redisKeys
	idOf     func(T) int64
	notFound error
}

func (c *redisCollection[T]) list(ctx context.Context) ([]T, error) {
	ids, err := c.client.ZRange(ctx, c.keys.index(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt index member %q", id)
		}
		keys[i] = c.keys.record(n)
	}
	docs, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for i, doc := range docs {
		s, ok := doc.(string)
		if !ok {
			continue // index entry without a document
		}
		var v T
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, errors.Wrapf(err, "decode %s", keys[i])
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *redisCollection[T]) get(ctx context.Context, id int64) (T, error) {
	var v T
	b, err := c.client.Get(ctx, c.keys.record(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, c.notFound
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, errors.Wrapf(err, "decode %s", c.keys.record(id))
	}
	return v, nil
}

func (c *redisCollection[T]) put(ctx context.Context, items ...T) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, item := range items {
			b, err := json.Marshal(item)
			if err != nil {
				return err
			}
			id := c.idOf(item)
			pipe.Set(ctx, c.keys.record(id), b, 0)
			pipe.ZAdd(ctx, c.keys.index(), redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)})
		}
		return nil
	})
	return err
}

func (c *redisCollection[T]) replace(ctx context.Context, item T) error {
	n, err := c.client.Exists(ctx, c.keys.record(c.idOf(item))).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return c.notFound
	}
	return c.put(ctx, item)
}

func (c *redisCollection[T]) remove(ctx context.Context, id int64) error {
	var del *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, c.keys.record(id))
		pipe.ZRem(ctx, c.keys.index(), strconv.FormatInt(id, 10))
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return c.notFound
	}
	return nil
}

type RedisStaffRepository struct {
	c *redisCollection[staff.Staff]
}

func NewRedisStaffRepository(client *redis.Client) *RedisStaffRepository {
	return &RedisStaffRepository{c: &redisCollection[staff.Staff]{
		client:   client,
		keys:     redisKeys{prefix: redisPrefix, collection: "staff"},
		idOf:     func(s staff.Staff) int64 { return s.ID },
		notFound: staff.ErrNotFound,
	}}
}

func (r *RedisStaffRepository) List(ctx context.Context) ([]staff.Staff, error) {
	return r.c.list(ctx)
}

func (r *RedisStaffRepository) Get(ctx context.Context, id int64) (staff.Staff, error) {
	return r.c.get(ctx, id)
}

func (r *RedisStaffRepository) Insert(ctx context.Context, s staff.Staff) error {
	return r.c.put(ctx, s)
}

func (r *RedisStaffRepository) InsertMany(ctx context.Context, records []staff.Staff) error {
	if len(records) == 0 {
		return nil
	}
	return r.c.put(ctx, records...)
}

func (r *RedisStaffRepository) Replace(ctx context.Context, s staff.Staff) error {
	return r.c.replace(ctx, s)
}

func (r *RedisStaffRepository) Delete(ctx context.Context, id int64) error {
	return r.c.remove(ctx, id)
}

type RedisVacationRepository struct {
	c *redisCollection[vacation.Request]
}

func NewRedisVacationRepository(client *redis.Client) *RedisVacationRepository {
	return &RedisVacationRepository{c: &redisCollection[vacation.Request]{
		client:   client,
		keys:     redisKeys{prefix: redisPrefix, collection: "vacation"},
		idOf:     func(v vacation.Request) int64 { return v.ID },
		notFound: vacation.ErrNotFound,
	}}
}

func (r *RedisVacationRepository) List(ctx context.Context) ([]vacation.Request, error) {
	return r.c.list(ctx)
}

func (r *RedisVacationRepository) Get(ctx context.Context, id int64) (vacation.Request, error) {
	return r.c.get(ctx, id)
}

func (r *RedisVacationRepository) Insert(ctx context.Context, v vacation.Request) error {
	return r.c.put(ctx, v)
}

func (r *RedisVacationRepository) Replace(ctx context.Context, v vacation.Request) error {
	return r.c.replace(ctx, v)
}

func (r *RedisVacationRepository) Delete(ctx context.Context, id int64) error {
	return r.c.remove(ctx, id)
}
