package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	core "github.com/mohammad-safakhou/deepchat/internal/agent/core"
)

// fakeHistoryDB keeps keys and lists in memory, mirroring the redis
// operations History relies on.
type fakeHistoryDB struct {
	kv    map[string]string
	lists map[string][]string
}

func newFakeHistoryDB() *fakeHistoryDB {
	return &fakeHistoryDB{kv: map[string]string{}, lists: map[string][]string{}}
}

func (f *fakeHistoryDB) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.kv[key] = value
	return nil
}

func (f *fakeHistoryDB) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.kv[key]
	return ok, nil
}

func (f *fakeHistoryDB) RPush(ctx context.Context, key string, vals ...interface{}) error {
	for _, v := range vals {
		switch t := v.(type) {
		case []byte:
			f.lists[key] = append(f.lists[key], string(t))
		case string:
			f.lists[key] = append(f.lists[key], t)
		default:
			return fmt.Errorf("unsupported value type %T", v)
		}
	}
	return nil
}

func (f *fakeHistoryDB) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (f *fakeHistoryDB) LRange(ctx context.Context, key string) ([]string, error) {
	return append([]string(nil), f.lists[key]...), nil
}

func TestCreateChatIDIsUUID(t *testing.T) {
	h := &History{db: newFakeHistoryDB()}

	id, err := h.CreateChat(context.Background())
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("chat id %q is not a UUID: %v", id, err)
	}
	ok, err := h.Exists(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("created chat should exist, got ok=%v err=%v", ok, err)
	}

	ok, err = h.Exists(context.Background(), "unknown")
	if err != nil || ok {
		t.Fatalf("unknown chat should not exist, got ok=%v err=%v", ok, err)
	}
}

func TestAppendNeverMutatesEarlierTurns(t *testing.T) {
	h := &History{db: newFakeHistoryDB()}
	ctx := context.Background()
	id, err := h.CreateChat(ctx)
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	firstTurn := []core.Message{
		{Role: core.RoleUser, Content: "first question"},
		{Role: core.RoleAssistant, Content: "first answer"},
	}
	if err := h.Append(ctx, id, firstTurn...); err != nil {
		t.Fatalf("Append: %v", err)
	}
	before, err := h.Messages(ctx, id)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}

	if err := h.Append(ctx, id,
		core.Message{Role: core.RoleUser, Content: "second question"},
		core.Message{Role: core.RoleAssistant, Content: "second answer"},
	); err != nil {
		t.Fatalf("Append: %v", err)
	}
	after, err := h.Messages(ctx, id)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}

	if len(after) != 4 {
		t.Fatalf("got %d messages, want 4", len(after))
	}
	if !reflect.DeepEqual(after[:2], before) {
		t.Fatalf("earlier turns changed:\nbefore %+v\nafter  %+v", before, after[:2])
	}
	if after[2].Content != "second question" || after[3].Content != "second answer" {
		t.Fatalf("new turn out of order: %+v", after[2:])
	}
}

func TestAppendNothingIsNoop(t *testing.T) {
	h := &History{db: newFakeHistoryDB()}
	if err := h.Append(context.Background(), "any"); err != nil {
		t.Fatalf("empty append should be a no-op, got %v", err)
	}
}

func newChatsEcho(h *History) *echo.Echo {
	e := echo.New()
	(&ChatsHandler{History: h}).Register(e.Group("/api/chats"))
	return e
}

func TestChatsHandlerCreateAndGet(t *testing.T) {
	h := &History{db: newFakeHistoryDB()}
	e := newChatsEcho(h)

	rec := postJSON(e, "/api/chats", `{}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201", rec.Code)
	}
	var created map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	id := created["id"]
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("handler returned a non-UUID id %q", id)
	}

	if err := h.Append(context.Background(), id, core.Message{Role: core.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/chats/"+id, nil)
	getRec := httptest.NewRecorder()
	e.ServeHTTP(getRec, req)
	if getRec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", getRec.Code)
	}
	var out struct {
		ID       string         `json:"id"`
		Messages []core.Message `json:"messages"`
	}
	if err := json.Unmarshal(getRec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.ID != id || len(out.Messages) != 1 || out.Messages[0].Content != "hi" {
		t.Fatalf("unexpected chat payload: %+v", out)
	}
}

func TestChatsHandlerUnknownChat(t *testing.T) {
	e := newChatsEcho(&History{db: newFakeHistoryDB()})

	req := httptest.NewRequest(http.MethodGet, "/api/chats/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}
