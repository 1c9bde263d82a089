package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDenylistPrefix = "authtoken:revoked:"

// ErrTokenRevoked is reported by the auth gate for deny-listed tokens.
var ErrTokenRevoked = errors.New("auth: token revoked")

// Denylist records logged-out tokens until they would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RedisDenylist stores revoked token fingerprints in Redis with a TTL.
type RedisDenylist struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisDenylist builds a deny-list over client. An empty prefix selects the default.
func NewRedisDenylist(client redis.Cmdable, prefix string) *RedisDenylist {
	if prefix == "" {
		prefix = defaultDenylistPrefix
	}
	return &RedisDenylist{client: client, prefix: prefix, now: time.Now}
}

// Revoke deny-lists token until expiresAt. Already expired tokens are ignored.
func (d *RedisDenylist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, d.key(token), "1", ttl).Err()
}

// IsRevoked reports whether token was deny-listed.
func (d *RedisDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// key uses the signature segment, which is unique per header+claims.
func (d *RedisDenylist) key(token string) string {
	if i := strings.LastIndexByte(token, '.'); i >= 0 {
		token = token[i+1:]
	}
	return d.prefix + token
}
