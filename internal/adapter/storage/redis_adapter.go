package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

const (
	itemsKey          = "inventory:items"
	itemOrderKey      = "inventory:item_order"
	logsKey           = "inventory:logs"
	requestKeyPrefix  = "inventory:request:"
	defaultRequestTTL = 24 * time.Hour
)

// upsertItemScript writes the item and appends its id to the order list
// only when the id is new, so positions survive replacements.
var upsertItemScript = redis.NewScript(`
local added = redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
if added == 1 then
	redis.call('RPUSH', KEYS[2], ARGV[1])
end
return added
`)

// RedisAdapter is a cache shared between processes. Items live in a hash
// keyed by id with a separate list preserving load order; logs are a list
// kept newest first.
type RedisAdapter struct {
	client     *redis.Client
	requestTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, requestTTL time.Duration) *RedisAdapter {
	if requestTTL <= 0 {
		requestTTL = defaultRequestTTL
	}
	return &RedisAdapter{client: client, requestTTL: requestTTL}
}

func (r *RedisAdapter) ReplaceAll(ctx context.Context, items []domain.Item, logs []domain.LogEntry) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, itemsKey, itemOrderKey, logsKey)
		if err := queueItems(ctx, pipe, items); err != nil {
			return err
		}
		return queueLogs(ctx, pipe, logs)
	})
	return errors.Wrap(err, "replace cache")
}

func (r *RedisAdapter) ReplaceItems(ctx context.Context, items []domain.Item) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, itemsKey, itemOrderKey)
		return queueItems(ctx, pipe, items)
	})
	return errors.Wrap(err, "replace cached items")
}

func queueItems(ctx context.Context, pipe redis.Pipeliner, items []domain.Item) error {
	for _, item := range items {
		data, err := json.Marshal(newItemRow(item))
		if err != nil {
			return err
		}
		pipe.HSet(ctx, itemsKey, item.ID, data)
		pipe.RPush(ctx, itemOrderKey, item.ID)
	}
	return nil
}

func queueLogs(ctx context.Context, pipe redis.Pipeliner, logs []domain.LogEntry) error {
	for _, entry := range logs {
		data, err := json.Marshal(newLogRow(entry))
		if err != nil {
			return err
		}
		pipe.RPush(ctx, logsKey, data)
	}
	return nil
}

func (r *RedisAdapter) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	data, err := r.client.HGet(ctx, itemsKey, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get cached item %s", id)
	}

	item, err := decodeItem(data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *RedisAdapter) Items(ctx context.Context) ([]domain.Item, error) {
	ids, err := r.client.LRange(ctx, itemOrderKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list cached item ids")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := r.client.HMGet(ctx, itemsKey, ids...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list cached items")
	}

	items := make([]domain.Item, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		item, err := decodeItem([]byte(s))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *RedisAdapter) Logs(ctx context.Context) ([]domain.LogEntry, error) {
	values, err := r.client.LRange(ctx, logsKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list cached logs")
	}

	logs := make([]domain.LogEntry, 0, len(values))
	for _, v := range values {
		var row logRow
		if err := json.Unmarshal([]byte(v), &row); err != nil {
			return nil, errors.Wrap(err, "decode cached log")
		}
		entry, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

func (r *RedisAdapter) ReplaceItem(ctx context.Context, item domain.Item) error {
	data, err := json.Marshal(newItemRow(item))
	if err != nil {
		return errors.Wrap(err, "encode item")
	}
	err = upsertItemScript.Run(ctx, r.client, []string{itemsKey, itemOrderKey}, item.ID, data).Err()
	return errors.Wrapf(err, "cache item %s", item.ID)
}

func (r *RedisAdapter) PrependLog(ctx context.Context, entry domain.LogEntry) error {
	data, err := json.Marshal(newLogRow(entry))
	if err != nil {
		return errors.Wrap(err, "encode log")
	}
	return errors.Wrapf(r.client.LPush(ctx, logsKey, data).Err(), "cache log %s", entry.ID)
}

func (r *RedisAdapter) Clear(ctx context.Context) error {
	return errors.Wrap(r.client.Del(ctx, itemsKey, itemOrderKey, logsKey).Err(), "clear cache")
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, requestKeyPrefix+key, 1, r.requestTTL).Result()
	if err != nil {
		return false, errors.Wrap(err, "claim request key")
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return errors.Wrap(r.client.Del(ctx, requestKeyPrefix+key).Err(), "release request key")
}

func decodeItem(data []byte) (domain.Item, error) {
	var row itemRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domain.Item{}, errors.Wrap(err, "decode cached item")
	}
	return row.toDomain()
}
