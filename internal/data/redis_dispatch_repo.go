package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/tophhie/pds-welcomer/internal/domain/model"
)

const redisScanCount = 200

// RedisDispatchRecordRepo stores one JSON DispatchRecord per DID under a key prefix.
// Records are written without a TTL.
type RedisDispatchRecordRepo struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisDispatchRecordRepo creates a repo over client; prefix may be empty.
func NewRedisDispatchRecordRepo(client redis.UniversalClient, prefix string) *RedisDispatchRecordRepo {
	return &RedisDispatchRecordRepo{client: client, prefix: prefix}
}

func (r *RedisDispatchRecordRepo) key(did string) string {
	return r.prefix + did
}

// Get returns the record for did, or nil if none exists.
func (r *RedisDispatchRecordRepo) Get(ctx context.Context, did string) (*model.DispatchRecord, error) {
	if did == "" {
		return nil, ErrDIDRequired
	}

	raw, err := r.client.Get(ctx, r.key(did)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec model.DispatchRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode dispatch record %s: %w", did, err)
	}
	return &rec, nil
}

// Put creates or overwrites the record for did.
func (r *RedisDispatchRecordRepo) Put(ctx context.Context, did string, record model.DispatchRecord) error {
	if did == "" {
		return ErrDIDRequired
	}
	if !record.Status.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidStatus, record.Status)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode dispatch record: %w", err)
	}
	if err := r.client.Set(ctx, r.key(did), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the record for did and reports whether one existed.
func (r *RedisDispatchRecordRepo) Delete(ctx context.Context, did string) (bool, error) {
	if did == "" {
		return false, ErrDIDRequired
	}

	n, err := r.client.Del(ctx, r.key(did)).Result()
	if err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return n > 0, nil
}

// List scans all records under the prefix, newest first.
// Malformed values are skipped.
func (r *RedisDispatchRecordRepo) List(
	ctx context.Context,
	opts model.DispatchRecordListOptions,
) ([]model.DispatchRecordEntry, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]model.DispatchRecordEntry, 0, len(keys))
	for _, key := range keys {
		did := strings.TrimPrefix(key, r.prefix)
		rec, getErr := r.Get(ctx, did)
		if getErr != nil || rec == nil {
			continue
		}
		if opts.Status != "" && rec.Status != opts.Status {
			continue
		}
		entries = append(entries, model.DispatchRecordEntry{DID: did, Record: *rec})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Record.At.After(entries[j].Record.At)
	})
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	return entries, nil
}

func (r *RedisDispatchRecordRepo) scanKeys(ctx context.Context) ([]string, error) {
	var (
		mu   sync.Mutex
		keys []string
	)
	scan := func(ctx context.Context, c redis.Cmdable) error {
		iter := c.Scan(ctx, 0, r.prefix+"*", redisScanCount).Iterator()
		for iter.Next(ctx) {
			mu.Lock()
			keys = append(keys, iter.Val())
			mu.Unlock()
		}
		return iter.Err()
	}

	// SCAN is per node; a cluster has to be walked master by master.
	if cluster, ok := r.client.(*redis.ClusterClient); ok {
		err := cluster.ForEachMaster(ctx, func(ctx context.Context, c *redis.Client) error {
			return scan(ctx, c)
		})
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		return keys, nil
	}

	if err := scan(ctx, r.client); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

// Health checks the health of the Redis connection.
func (r *RedisDispatchRecordRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
