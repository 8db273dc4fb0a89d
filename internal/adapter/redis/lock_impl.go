package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const jobLockPrefix = "speedsale:lock:"

// releaseScript deletes the lock only while this owner still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockRepoImpl provides a concrete implementation for the JobLock interface using Redis keys with expiry.
type LockRepoImpl struct {
	client *redis.Client
	owner  string
}

// NewLockRepo creates a lock holder with a unique owner token.
func NewLockRepo(client *redis.Client) *LockRepoImpl {
	return &LockRepoImpl{client: client, owner: uuid.NewString()}
}

func lockKey(retailerID string) string {
	return jobLockPrefix + retailerID
}

// Acquire takes the retailer lock with SET NX. It expires after ttl so a
// crashed worker cannot hold it forever.
func (r *LockRepoImpl) Acquire(ctx context.Context, retailerID string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, lockKey(retailerID), r.owner, ttl).Result()
}

// Release drops the lock if it is still ours.
func (r *LockRepoImpl) Release(ctx context.Context, retailerID string) error {
	return releaseScript.Run(ctx, r.client, []string{lockKey(retailerID)}, r.owner).Err()
}
