package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storyforge/narrative-engine/pkg/campaign"
)

const sessionKeyPrefix = "narrative_session:"

// RedisStorage implements the Storage interface using Redis for session
// state and the filesystem for static campaign data.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance. redisURL is a
// redis:// URL or a bare host:port.
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// Bare host:port for local development
		opt = &redis.Options{Addr: redisURL}
	}
	rdb := redis.NewClient(opt)

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session operations (Redis-backed)

func (r *RedisStorage) SaveSession(ctx context.Context, id uuid.UUID, s *Session) error {
	if s == nil {
		return fmt.Errorf("session cannot be nil")
	}
	s.UpdatedAt = time.Now()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKeyPrefix + id.String()
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	r.logger.Debug("Session saved", "session_id", id, "bytes", len(data))
	return nil
}

// LoadSession returns nil without error when the session does not exist.
func (r *RedisStorage) LoadSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	key := sessionKeyPrefix + id.String()
	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	key := sessionKeyPrefix + id.String()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Campaign operations (filesystem-backed)

func (r *RedisStorage) campaignDir() string {
	return filepath.Join(r.dataDir, "campaigns")
}

// ListCampaigns returns a map of campaign names to filenames.
func (r *RedisStorage) ListCampaigns(ctx context.Context) (map[string]string, error) {
	result := make(map[string]string)

	err := filepath.WalkDir(r.campaignDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		c, err := r.readCampaign(path)
		if err != nil {
			r.logger.Warn("Skipping unreadable campaign file", "file", d.Name(), "error", err)
			return nil
		}
		result[c.Name] = d.Name()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	return result, nil
}

func (r *RedisStorage) GetCampaign(ctx context.Context, filename string) (*campaign.Campaign, error) {
	// Filenames come from URLs; keep reads inside the campaign dir.
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		return nil, fmt.Errorf("invalid campaign filename: %q", filename)
	}

	c, err := r.readCampaign(filepath.Join(r.campaignDir(), filename))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *RedisStorage) readCampaign(path string) (*campaign.Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign file: %w", err)
	}

	var c campaign.Campaign
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse campaign file %s: %w", filepath.Base(path), err)
	}
	c.FileName = filepath.Base(path)
	return &c, nil
}
