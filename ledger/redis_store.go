package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"smpverify/model"
)

// DefaultRedisKey is the hash holding one JSON record per user id.
const DefaultRedisKey = "smpverify:verified_users"

// upsertScript runs create-if-absent-else-advance atomically on the server, so
// concurrent writers from several processes can never replace first_verified.
var upsertScript = goredis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
local rec
if cur then
	rec = cjson.decode(cur)
else
	rec = {first_verified = ARGV[3]}
end
rec['last_verified'] = ARGV[3]
if ARGV[2] ~= '' then
	rec['username'] = ARGV[2]
end
redis.call('HSET', KEYS[1], ARGV[1], cjson.encode(rec))
return 1
`)

// RedisStore keeps the ledger in a redis hash.
type RedisStore struct {
	client *goredis.Client
	key    string
}

// NewRedisStore creates a store on client under key.
func NewRedisStore(client *goredis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*model.VerifiedUser, error) {
	raw, err := s.client.HGet(ctx, s.key, userID).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis hget %s: %w", userID, err)
	}

	var user model.VerifiedUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("%w: record %s: %v", ErrCorruptLedger, userID, err)
	}
	user.UserID = userID
	return &user, nil
}

func (s *RedisStore) Upsert(ctx context.Context, userID, username string, at time.Time) error {
	err := upsertScript.Run(ctx, s.client, []string{s.key}, userID, username, model.FormatTime(at)).Err()
	if err != nil {
		return fmt.Errorf("redis upsert %s: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) Save(ctx context.Context, user model.VerifiedUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode %s: %w", user.UserID, err)
	}
	if err := s.client.HSet(ctx, s.key, user.UserID, data).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", user.UserID, err)
	}
	return nil
}

func (s *RedisStore) All(ctx context.Context) ([]model.VerifiedUser, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}

	out := make([]model.VerifiedUser, 0, len(raw))
	for id, data := range raw {
		var user model.VerifiedUser
		if err := json.Unmarshal([]byte(data), &user); err != nil {
			return nil, fmt.Errorf("%w: record %s: %v", ErrCorruptLedger, id, err)
		}
		user.UserID = id
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
