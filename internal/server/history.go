package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	core "github.com/mohammad-safakhou/deepchat/internal/agent/core"
)

const historyTTL = 30 * 24 * time.Hour

// historyDB is the key/list surface History needs from redis.
type historyDB interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	RPush(ctx context.Context, key string, vals ...interface{}) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	LRange(ctx context.Context, key string) ([]string, error)
}

type redisHistoryDB struct {
	rdb *redis.Client
}

func (r redisHistoryDB) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r redisHistoryDB) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key).Result()
	return n == 1, err
}

func (r redisHistoryDB) RPush(ctx context.Context, key string, vals ...interface{}) error {
	return r.rdb.RPush(ctx, key, vals...).Err()
}

func (r redisHistoryDB) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.rdb.Expire(ctx, key, ttl).Err()
}

func (r redisHistoryDB) LRange(ctx context.Context, key string) ([]string, error) {
	return r.rdb.LRange(ctx, key, 0, -1).Result()
}

// History keeps per-chat message lists in redis. Append-only per
// turn; earlier turns are never rewritten.
type History struct {
	db historyDB
}

func NewHistory(addr, password string, db int) (*History, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed (%s): %w", addr, err)
	}
	return &History{db: redisHistoryDB{rdb: rdb}}, nil
}

func chatKey(id string) string { return "chat:" + id + ":messages" }
func metaKey(id string) string { return "chat:" + id + ":meta" }

// CreateChat allocates a new chat id.
func (h *History) CreateChat(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := h.db.Set(ctx, metaKey(id), "{}", historyTTL); err != nil {
		return "", err
	}
	return id, nil
}

// Exists reports whether a chat id is known.
func (h *History) Exists(ctx context.Context, id string) (bool, error) {
	return h.db.Exists(ctx, metaKey(id))
}

// Append adds messages to the end of a chat, in order.
func (h *History) Append(ctx context.Context, id string, messages ...core.Message) error {
	if len(messages) == 0 {
		return nil
	}
	vals := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		vals = append(vals, b)
	}
	key := chatKey(id)
	if err := h.db.RPush(ctx, key, vals...); err != nil {
		return err
	}
	return h.db.Expire(ctx, key, historyTTL)
}

// Messages returns the full chat in conversation order.
func (h *History) Messages(ctx context.Context, id string) ([]core.Message, error) {
	raw, err := h.db.LRange(ctx, chatKey(id))
	if err != nil {
		return nil, err
	}
	out := make([]core.Message, 0, len(raw))
	for _, item := range raw {
		var m core.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ChatsHandler exposes chat creation and history reads.
type ChatsHandler struct {
	History *History
}

func (h *ChatsHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("/:id", h.get)
}

func (h *ChatsHandler) create(c echo.Context) error {
	id, err := h.History.CreateChat(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *ChatsHandler) get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	ok, err := h.History.Exists(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "chat not found")
	}
	msgs, err := h.History.Messages(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"id": id, "messages": msgs})
}
