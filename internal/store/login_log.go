package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	commonredis "github.com/yuanzac/submarine/common/redis"
)

// LoginLogStream is the Redis stream login attempts are appended to.
const LoginLogStream = "submarine:sys:login-log"

const loginLogMaxLen = 10000

// LoginAttempt is one audit record of a login.
type LoginAttempt struct {
	ID        string    `json:"id,omitempty"`
	UserName  string    `json:"userName"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason,omitempty"`
	Time      time.Time `json:"time"`
}

// LoginLog stores login attempts, newest first on read.
type LoginLog interface {
	Record(ctx context.Context, a LoginAttempt) error
	Recent(ctx context.Context, count int64) ([]LoginAttempt, error)
}

type RedisLoginLog struct {
	c      *redis.Client
	stream string
}

func NewRedisLoginLog(c *redis.Client) *RedisLoginLog {
	return &RedisLoginLog{c: c, stream: LoginLogStream}
}

func (l *RedisLoginLog) Record(ctx context.Context, a LoginAttempt) error {
	_, err := commonredis.PublishToStream(ctx, l.c, l.stream, loginLogMaxLen, map[string]interface{}{
		"user_name":  a.UserName,
		"ip_address": a.IPAddress,
		"user_agent": a.UserAgent,
		"success":    a.Success,
		"reason":     a.Reason,
		"time":       a.Time.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

func (l *RedisLoginLog) Recent(ctx context.Context, count int64) ([]LoginAttempt, error) {
	msgs, err := commonredis.ReadLatest(ctx, l.c, l.stream, count)
	if err != nil {
		return nil, fmt.Errorf("failed to read login log: %w", err)
	}
	out := make([]LoginAttempt, 0, len(msgs))
	for _, m := range msgs {
		a := LoginAttempt{
			ID:        m.ID,
			UserName:  field(m.Values, "user_name"),
			IPAddress: field(m.Values, "ip_address"),
			UserAgent: field(m.Values, "user_agent"),
			Reason:    field(m.Values, "reason"),
		}
		a.Success, _ = strconv.ParseBool(field(m.Values, "success"))
		if ms, err := strconv.ParseInt(field(m.Values, "time"), 10, 64); err == nil {
			a.Time = time.UnixMilli(ms).UTC()
		}
		out = append(out, a)
	}
	return out, nil
}

func field(values map[string]interface{}, key string) string {
	s, _ := values[key].(string)
	return s
}

// MemoryLoginLog keeps the newest attempts in process memory.
type MemoryLoginLog struct {
	mu      sync.Mutex
	entries []LoginAttempt
	max     int
	seq     int
}

func NewMemoryLoginLog(max int) *MemoryLoginLog {
	if max <= 0 {
		max = 1000
	}
	return &MemoryLoginLog{max: max}
}

func (l *MemoryLoginLog) Record(_ context.Context, a LoginAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	a.ID = strconv.Itoa(l.seq)
	l.entries = append(l.entries, a)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	return nil
}

func (l *MemoryLoginLog) Recent(_ context.Context, count int64) ([]LoginAttempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []LoginAttempt{}
	for i := len(l.entries) - 1; i >= 0 && int64(len(out)) < count; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}
