package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketzone/backend/internal/api"
	"marketzone/backend/internal/api/handler"
	"marketzone/backend/internal/auth"
	"marketzone/backend/internal/chathub"
	"marketzone/backend/internal/messaging"
	"marketzone/backend/internal/models"
	"marketzone/backend/internal/ratelimit"
	"marketzone/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type testServer struct {
	router  *gin.Engine
	store   *storage.Service
	gateway *chathub.Gateway
	tokens  *auth.TokenService
	users   map[string]*models.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, api.RouterConfig{AllowedOrigins: []string{"*"}})
}

func newTestServerWith(t *testing.T, cfg api.RouterConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	store := storage.NewStorageService(db, time.Second)
	gw := chathub.NewGateway(chathub.NewRegistry())
	tokens := auth.NewTokenService("test-secret")
	svc := messaging.NewService(store, store, store, gw)
	h := handler.NewHandler(svc, gw, tokens, false)

	router, err := api.NewRouter(h, cfg)
	require.NoError(t, err)

	ts := &testServer{
		router:  router,
		store:   store,
		gateway: gw,
		tokens:  tokens,
		users:   make(map[string]*models.User),
	}
	for _, n := range []string{"alice", "bob", "carol"} {
		u := &models.User{Name: n, Email: n + "@example.com"}
		require.NoError(t, store.SaveUser(context.Background(), u))
		ts.users[n] = u
	}
	return ts
}

func (ts *testServer) id(name string) string { return ts.users[name].ID }

func (ts *testServer) token(t *testing.T, name string) string {
	tok, err := ts.tokens.Issue(ts.id(name))
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, as, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token(t, as))
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func (ts *testServer) sendMsg(t *testing.T, from, to, content string) {
	t.Helper()
	code, body := ts.do(t, from, http.MethodPost, "/api/messages/send", map[string]any{"receiverId": ts.id(to), "content": content})
	require.Equal(t, http.StatusCreated, code, body)
}

func TestRoutes_RequireToken(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, "", http.MethodGet, "/api/messages/conversations", nil)

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, body["success"])
}

func TestSend(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, "alice", http.MethodPost, "/api/messages/send", map[string]any{
		"receiverId": ts.id("bob"),
		"content":    "  Hello  ",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "Hello", data["content"])
	assert.Equal(t, false, data["read"])
	assert.Equal(t, ts.id("alice"), data["senderId"])
	assert.Equal(t, "alice", data["sender"].(map[string]any)["name"])
	assert.Equal(t, "bob", data["receiver"].(map[string]any)["name"])

	tests := []struct {
		name    string
		payload map[string]any
		code    int
		message string
	}{
		{"self", map[string]any{"receiverId": ts.id("alice"), "content": "hi"}, http.StatusBadRequest, "Cannot send message to yourself"},
		{"empty", map[string]any{"receiverId": ts.id("bob"), "content": "   "}, http.StatusBadRequest, "Receiver ID and content are required"},
		{"unknown receiver", map[string]any{"receiverId": "ghost", "content": "hi"}, http.StatusNotFound, "Receiver not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := ts.do(t, "alice", http.MethodPost, "/api/messages/send", tt.payload)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	ts := newTestServer(t)
	ts.sendMsg(t, "bob", "alice", "1")
	ts.sendMsg(t, "bob", "alice", "2")

	code, body := ts.do(t, "bob", http.MethodGet, "/api/messages/unread-count/"+ts.id("alice"), nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, false, body["success"])

	code, body = ts.do(t, "alice", http.MethodGet, "/api/messages/unread-count/"+ts.id("alice"), nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["unreadCount"])
	assert.EqualValues(t, 2, body["count"])

	path := "/api/messages/mark-read/" + ts.id("alice") + "/" + ts.id("bob")
	code, body = ts.do(t, "alice", http.MethodPut, path, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["modifiedCount"])

	_, body = ts.do(t, "alice", http.MethodPut, path, nil)
	assert.EqualValues(t, 0, body["modifiedCount"])

	code, _ = ts.do(t, "bob", http.MethodPut, path, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestGetConversationAndList(t *testing.T) {
	ts := newTestServer(t)
	ts.sendMsg(t, "alice", "bob", "first")
	ts.sendMsg(t, "bob", "alice", "second")
	ts.sendMsg(t, "carol", "alice", "third")

	code, body := ts.do(t, "alice", http.MethodGet, "/api/messages/conversation/"+ts.id("alice")+"/"+ts.id("bob"), nil)
	require.Equal(t, http.StatusOK, code)
	msgs := body["data"].([]any)
	require.Len(t, msgs, 2)
	first0 := msgs[0].(map[string]any)
	assert.Equal(t, "first", first0["content"])
	assert.Equal(t, ts.id("alice"), first0["sender"].(map[string]any)["id"])
	assert.Equal(t, "bob", first0["receiver"].(map[string]any)["name"])

	code, _ = ts.do(t, "carol", http.MethodGet, "/api/messages/conversation/"+ts.id("alice")+"/"+ts.id("bob"), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = ts.do(t, "alice", http.MethodGet, "/api/messages/conversations", nil)
	require.Equal(t, http.StatusOK, code)
	convs := body["data"].([]any)
	require.Len(t, convs, 2)
	first := convs[0].(map[string]any)
	assert.Equal(t, ts.id("carol"), first["otherUser"].(map[string]any)["id"])
	assert.EqualValues(t, 1, first["unreadCount"])
}

func TestDeleteConversation(t *testing.T) {
	ts := newTestServer(t)
	ts.sendMsg(t, "alice", "bob", "1")
	ts.sendMsg(t, "bob", "alice", "2")
	key := models.ConversationKey(ts.id("alice"), ts.id("bob"))

	code, body := ts.do(t, "alice", http.MethodDelete, "/api/messages/conversation/not-a-key", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid conversation ID format", body["message"])

	code, _ = ts.do(t, "carol", http.MethodDelete, "/api/messages/conversation/"+key, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = ts.do(t, "bob", http.MethodDelete, "/api/messages/conversation/"+key, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["deletedCount"])

	_, body = ts.do(t, "alice", http.MethodGet, "/api/messages/conversation/"+ts.id("alice")+"/"+ts.id("bob"), nil)
	assert.Empty(t, body["data"])
}

func TestHealthAndFallback(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		code, body := ts.do(t, "", http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "OK", body["status"])
	}

	code, body := ts.do(t, "", http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route not found", body["message"])
}

func TestLiveDelivery_OnlineReceiverGetsOneMessageNew(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + ts.token(t, "bob")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{"event": models.EventUserJoin, "data": ts.id("bob")}))
	require.Eventually(t, func() bool {
		_, ok := ts.gateway.Registry.Lookup(ts.id("bob"))
		return ok
	}, time.Second, 10*time.Millisecond)

	ts.sendMsg(t, "alice", "bob", "live hello")

	var events []string
	conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	for {
		var evt struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&evt); err != nil {
			break
		}
		events = append(events, evt.Event)
		if evt.Event == models.EventMessageNew {
			var p models.MessageEventPayload
			require.NoError(t, json.Unmarshal(evt.Data, &p))
			assert.Equal(t, "live hello", p.Message.Content)
			assert.Equal(t, models.ConversationKey(ts.id("alice"), ts.id("bob")), p.ConversationID)
		}
	}
	assert.Equal(t, []string{models.EventMessageNew, models.EventConversationUpdate}, events)

	// receiving live does not mark the message read
	_, body := ts.do(t, "bob", http.MethodGet, "/api/messages/unread-count/"+ts.id("bob"), nil)
	assert.EqualValues(t, 1, body["unreadCount"])
}

func TestWebSocket_RejectsMissingToken(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	t.Cleanup(srv.Close)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// healthFrom hits /api/health from peer with a client-supplied X-Forwarded-For.
func (ts *testServer) healthFrom(peer, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = peer + ":40000"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	ts := newTestServerWith(t, api.RouterConfig{Limiter: ratelimit.New(rate.Limit(1), 1)})

	allowed := 0
	for i := 0; i < 20; i++ {
		if ts.healthFrom("203.0.113.9", fmt.Sprintf("10.0.0.%d", i)) == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
	assert.Equal(t, http.StatusTooManyRequests, ts.healthFrom("203.0.113.9", "10.0.0.200"))
}

func TestRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	ts := newTestServerWith(t, api.RouterConfig{
		TrustedProxies: []string{"203.0.113.9"},
		Limiter:        ratelimit.New(rate.Limit(1), 1),
	})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, ts.healthFrom("203.0.113.9", fmt.Sprintf("10.0.0.%d", i)))
	}
	// same forwarded client twice
	assert.Equal(t, http.StatusTooManyRequests, ts.healthFrom("203.0.113.9", "10.0.0.0"))
}

func TestNewRouter_RejectsInvalidTrustedProxy(t *testing.T) {
	_, err := api.NewRouter(nil, api.RouterConfig{TrustedProxies: []string{"not-an-ip"}})

	assert.Error(t, err)
}
