package userdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	userdomain "github.com/Black-And-White-Club/advent-bot/app/modules/user/domain"
	"github.com/redis/go-redis/v9"
)

const (
	linksHashKey    = "aoc:links"          // aoc_id -> serialized link
	reverseIndexKey = "aoc:links:discord"  // discord_id -> aoc_id
)

// RedisLinkStore keeps the mapping in two Redis hashes: the links themselves
// keyed by AoC id plus a reverse index for unlink-by-Discord-user.
type RedisLinkStore struct {
	client *redis.Client
}

func NewRedisLinkStore(client *redis.Client) *RedisLinkStore {
	return &RedisLinkStore{client: client}
}

func (s *RedisLinkStore) Put(ctx context.Context, link userdomain.Link) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}

	// Drop a previous link held by the same Discord user before overwriting.
	prevAoCID, err := s.client.HGet(ctx, reverseIndexKey, link.DiscordID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read reverse index: %w", err)
	}

	// If another Discord user currently holds this AoC id, their reverse
	// index entry would otherwise point at a link that no longer belongs to
	// them, and a later unlink would delete the new owner's link.
	prevOwner, ok, err := s.GetByAoCID(ctx, link.AoCID)
	if err != nil {
		return fmt.Errorf("read existing link: %w", err)
	}

	pipe := s.client.TxPipeline()
	if prevAoCID != "" && prevAoCID != link.AoCID {
		pipe.HDel(ctx, linksHashKey, prevAoCID)
	}
	if ok && prevOwner.DiscordID != link.DiscordID {
		pipe.HDel(ctx, reverseIndexKey, prevOwner.DiscordID)
	}
	pipe.HSet(ctx, linksHashKey, link.AoCID, data)
	pipe.HSet(ctx, reverseIndexKey, link.DiscordID, link.AoCID)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisLinkStore) DeleteByDiscordID(ctx context.Context, discordID string) (userdomain.Link, error) {
	aocID, err := s.client.HGet(ctx, reverseIndexKey, discordID).Result()
	if errors.Is(err, redis.Nil) {
		return userdomain.Link{}, userdomain.ErrNotLinked
	}
	if err != nil {
		return userdomain.Link{}, err
	}

	link, ok, err := s.GetByAoCID(ctx, aocID)
	if err != nil {
		return userdomain.Link{}, err
	}
	if !ok {
		return userdomain.Link{}, userdomain.ErrNotLinked
	}

	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, linksHashKey, aocID)
	pipe.HDel(ctx, reverseIndexKey, discordID)
	if _, err := pipe.Exec(ctx); err != nil {
		return userdomain.Link{}, err
	}
	return link, nil
}

func (s *RedisLinkStore) GetByAoCID(ctx context.Context, aocID string) (userdomain.Link, bool, error) {
	data, err := s.client.HGet(ctx, linksHashKey, aocID).Result()
	if errors.Is(err, redis.Nil) {
		return userdomain.Link{}, false, nil
	}
	if err != nil {
		return userdomain.Link{}, false, err
	}

	var link userdomain.Link
	if err := json.Unmarshal([]byte(data), &link); err != nil {
		return userdomain.Link{}, false, err
	}
	return link, true, nil
}

func (s *RedisLinkStore) List(ctx context.Context) ([]userdomain.Link, error) {
	entries, err := s.client.HGetAll(ctx, linksHashKey).Result()
	if err != nil {
		return nil, err
	}

	out := make([]userdomain.Link, 0, len(entries))
	for _, data := range entries {
		var link userdomain.Link
		if err := json.Unmarshal([]byte(data), &link); err != nil {
			return nil, err
		}
		out = append(out, link)
	}
	return out, nil
}
