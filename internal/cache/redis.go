package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/emrgen/metadata/internal/compress"
	redis "github.com/redis/go-redis/v9"
)

// Redis caches evaluated lookup choices.
type Redis struct {
	client  *redis.Client
	encoder compress.Compress
}

func NewRedis(addr, password string, db int, encoder compress.Compress) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		Protocol: 2, // Connection protocol
	})

	if encoder == nil {
		encoder = compress.NewNop()
	}

	return &Redis{client: client, encoder: encoder}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) GetChoices(ctx context.Context, key string) ([]string, bool, error) {
	res := r.client.Get(ctx, key)
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, false, nil
		}
		return nil, false, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, false, err
	}

	data, err := r.encoder.Decode(buf)
	if err != nil {
		return nil, false, err
	}

	var choices []string
	if err := json.Unmarshal(data, &choices); err != nil {
		return nil, false, err
	}

	return choices, true, nil
}

func (r *Redis) SetChoices(ctx context.Context, key string, choices []string, ttl time.Duration) error {
	data, err := json.Marshal(choices)
	if err != nil {
		return err
	}

	value, err := r.encoder.Encode(data)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
