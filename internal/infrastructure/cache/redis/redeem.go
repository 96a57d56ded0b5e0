package redis

import (
	goredis "github.com/redis/go-redis/v9"
)

// Single-use redemption states shared by the code and ticket stores.
const (
	redeemOK       = 0
	redeemNotFound = -1
	redeemExpired  = -2
	redeemConsumed = -3
)

// redeemScript atomically flips the consumed flag on a stored artifact.
// Exactly one concurrent caller observes redeemOK. Expiry is checked before
// the consumed flag so an expired-and-consumed artifact reports expired.
// Consumed records are retained (with a TTL) so replays are reportable as
// such instead of degrading to not-found.
var redeemScript = goredis.NewScript(`
local data = redis.call('HGET', KEYS[1], 'data')
if not data then
  return {-1}
end
local exp = tonumber(redis.call('HGET', KEYS[1], 'exp'))
if exp and exp <= tonumber(ARGV[1]) then
  return {-2}
end
if redis.call('HGET', KEYS[1], 'consumed') == '1' then
  return {-3}
end
redis.call('HSET', KEYS[1], 'consumed', '1')
return {0, data}
`)

// redeemResult unpacks the script's reply.
func redeemResult(raw interface{}) (int64, string) {
	reply, ok := raw.([]interface{})
	if !ok || len(reply) == 0 {
		return redeemNotFound, ""
	}
	status, _ := reply[0].(int64)
	if status != redeemOK || len(reply) < 2 {
		return status, ""
	}
	data, _ := reply[1].(string)
	return status, data
}
