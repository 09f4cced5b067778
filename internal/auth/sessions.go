package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Latacz1/notatnik-treningowy/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "trainings-session||"
	tokensSetKey     = "trainings-sessions"
	resetKeyPrefix   = "trainings-password-reset||"
	tokenBytes       = 32
)

// Sessions keeps login sessions and password reset tokens in redis.
// A session value is "<created at unix>|<user id>".
type Sessions struct {
	redisClient *redis.Client
	ttl         time.Duration
	// token generator, replaced in tests
	RandStringFunc func(nBytes int) (string, error)
	now            func() time.Time
}

func NewSessions(ttl time.Duration, redisClient *redis.Client) *Sessions {
	return &Sessions{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.RandomToken,
		now:            time.Now,
	}
}

func sessionValue(createdAt time.Time, userID string) string {
	return fmt.Sprintf("%d|%s", createdAt.Unix(), userID)
}

func parseSessionValue(val string) (time.Time, string, error) {
	createdAtStr, userID, found := strings.Cut(val, "|")
	if !found || userID == "" {
		return time.Time{}, "", fmt.Errorf("malformed session value [%s]", val)
	}
	createdAtUnix, err := strconv.ParseInt(createdAtStr, 10, 64)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("malformed session created at: %w", err)
	}
	return time.Unix(createdAtUnix, 0), userID, nil
}

func (s *Sessions) Create(ctx context.Context, userID string) (string, error) {
	token, err := s.RandStringFunc(tokenBytes)
	if err != nil {
		return "", err
	}

	sessionKey := sessionKeyPrefix + token
	if err := s.redisClient.Set(ctx, sessionKey, sessionValue(s.now(), userID), 0).Err(); err != nil {
		return "", err
	}

	// add token to list of sessions
	if err := s.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// UserID returns the user owning the session, or ErrNotLogged for unknown and expired sessions.
func (s *Sessions) UserID(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotLogged
	}

	val, err := s.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotLogged
		}
		return "", err
	}

	createdAt, userID, err := parseSessionValue(val)
	if err != nil {
		return "", err
	}

	if s.now().Sub(createdAt) > s.ttl {
		return "", ErrNotLogged
	}
	return userID, nil
}

func (s *Sessions) Delete(ctx context.Context, token string) error {
	if err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return err
	}
	// remove token from the list of sessions
	return s.redisClient.SRem(ctx, tokensSetKey, token).Err()
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *Sessions) ScanAndClean(ctx context.Context) {
	sessionTokens, err := s.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("!!! sessions, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionTokens) == 0 {
		log.Debugln("=> sessions, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> sessions, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		val, err := s.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				toRemove = append(toRemove, token)
				continue
			}
			log.Errorf("=> sessions, scan and clean token: %s", err)
			continue
		}

		createdAt, _, err := parseSessionValue(val)
		if err != nil || s.now().Sub(createdAt) > s.ttl {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := s.Delete(ctx, token); err != nil {
			log.Errorf("=> sessions, clean token: %s", err)
		}
	}
	log.Debugf("=> sessions, scan and clean done, removed %d", len(toRemove))
}

func (s *Sessions) CreateResetToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token, err := s.RandStringFunc(tokenBytes)
	if err != nil {
		return "", err
	}
	if err := s.redisClient.Set(ctx, resetKeyPrefix+token, userID, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeResetToken returns the user the token was issued for. A token works only once.
func (s *Sessions) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidResetToken
	}

	resetKey := resetKeyPrefix + token
	userID, err := s.redisClient.Get(ctx, resetKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrInvalidResetToken
		}
		return "", err
	}

	if err := s.redisClient.Del(ctx, resetKey).Err(); err != nil {
		return "", err
	}
	return userID, nil
}
