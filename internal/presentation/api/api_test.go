package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/chatroom/internal/application/auth"
	"github.com/hilthontt/chatroom/internal/application/rooms"
	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/configs"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
	"github.com/hilthontt/chatroom/internal/infrastructure/metrics"
	"github.com/hilthontt/chatroom/internal/infrastructure/ws"
	"github.com/hilthontt/chatroom/internal/persistence/repository"
	authHandler "github.com/hilthontt/chatroom/internal/presentation/handler/auth"
	healthHandler "github.com/hilthontt/chatroom/internal/presentation/handler/health"
	profileHandler "github.com/hilthontt/chatroom/internal/presentation/handler/profile"
	realtimeHandler "github.com/hilthontt/chatroom/internal/presentation/handler/realtime"
	roomHandler "github.com/hilthontt/chatroom/internal/presentation/handler/rooms"
	"github.com/hilthontt/chatroom/internal/presentation/utils"
	"github.com/hilthontt/chatroom/internal/presentation/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
}

func (m *memUsers) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return nil, domain.ErrDuplicateUsername
		}
	}
	m.seq++
	stored := *user
	stored.ID = fmt.Sprintf("u%d", m.seq)
	m.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	update.Apply(u)
	out := *u
	return &out, nil
}

type memRooms struct {
	mu    sync.Mutex
	rooms map[string]domain.Room
	seq   int
}

func (m *memRooms) Create(ctx context.Context, room *domain.Room) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	stored := *room
	stored.ID = fmt.Sprintf("r%d", m.seq)
	m.rooms[stored.ID] = stored
	return &stored, nil
}

func (m *memRooms) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return &room, nil
}

func (m *memRooms) List(ctx context.Context) ([]domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, room)
	}
	return out, nil
}

func (m *memRooms) Update(ctx context.Context, id, name, description string) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	room.Name, room.Description = name, description
	m.rooms[id] = room
	return &room, nil
}

func (m *memRooms) Delete(ctx context.Context, id string) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	delete(m.rooms, id)
	return &room, nil
}

type memAudit struct{}

func (memAudit) Log(ctx context.Context, log *domain.RoomAuditLog) error { return nil }
func (memAudit) GetByRoomID(ctx context.Context, roomID string, limit int) ([]domain.RoomAuditLog, error) {
	return nil, nil
}
func (memAudit) EnsureIndexes(ctx context.Context) error { return nil }

type testApp struct {
	server *httptest.Server
	relay  *ws.Relay
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := logging.NewNopLogger()
	cfg := configs.Config{
		HTTP:    configs.HTTPConfig{AllowedOrigins: []string{"http://allowed.example"}},
		Session: configs.SessionConfig{CookieName: "session_id", TTL: time.Hour},
	}

	sessions := repository.NewMemorySessionRepository()
	t.Cleanup(func() { _ = sessions.Close() })

	authSvc, err := auth.NewService(&memUsers{users: map[string]*domain.User{}}, sessions, logger, auth.Options{
		BcryptCost: bcrypt.MinCost,
		SessionTTL: time.Hour,
	})
	require.NoError(t, err)

	roomSvc := rooms.NewService(&memRooms{rooms: map[string]domain.Room{}}, nil, logger)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	m := metrics.New()
	relay := ws.NewRelay(m)
	socket := ws.NewHandler(relay, roomSvc, logger, ws.Options{ValidateRooms: true}, m)
	cookies := utils.CookieConfig{Name: cfg.Session.CookieName}

	app := NewApplication(cfg, Handlers{
		Auth:     authHandler.NewHandler(authSvc, renderer, cookies, logger),
		Profile:  profileHandler.NewHandler(authSvc, renderer, logger),
		Rooms:    roomHandler.NewHandler(roomSvc, memAudit{}, renderer, logger),
		Health:   healthHandler.NewHandler(),
		Realtime: realtimeHandler.NewHandler(socket),
	}, authSvc, logger, m)

	srv := httptest.NewServer(app.Mount())
	t.Cleanup(srv.Close)

	return &testApp{server: srv, relay: relay}
}

// client returns an HTTP client with its own cookie jar that does not follow redirects.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func register(t *testing.T, a *testApp, c *http.Client, username, password string) {
	t.Helper()
	resp, _ := doJSON(t, c, http.MethodPost, a.server.URL+"/registration", map[string]string{
		"name": "User " + username, "address": "1 Main St", "username": username, "password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func login(t *testing.T, a *testApp, c *http.Client, username, password string) {
	t.Helper()
	resp, _ := doJSON(t, c, http.MethodPost, a.server.URL+"/login", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_AliceScenario(t *testing.T) {
	a := newTestApp(t)
	c := a.client(t)

	resp, body := doJSON(t, c, http.MethodPost, a.server.URL+"/registration", map[string]string{
		"name": "Alice", "address": "1 Main St", "username": "alice", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "passwordHash")

	resp, _ = doJSON(t, c, http.MethodPost, a.server.URL+"/registration", map[string]string{
		"name": "Alice", "address": "2 Main St", "username": "alice", "password": "pw2",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, c, http.MethodPost, a.server.URL+"/login", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	login(t, a, c, "alice", "pw1")

	resp, body = doJSON(t, c, http.MethodGet, a.server.URL+"/profile", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	current := body["user"].(map[string]any)
	assert.Equal(t, "Alice", current["name"])
	assert.Equal(t, "1 Main St", current["address"])
}

func TestAPI_ProtectedRoutesNeedSession(t *testing.T) {
	a := newTestApp(t)
	c := a.client(t)

	resp, err := c.Get(a.server.URL + "/home")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = doJSON(t, c, http.MethodGet, a.server.URL+"/chatrooms", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, wsResp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(a.server.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, wsResp)
	assert.Equal(t, http.StatusUnauthorized, wsResp.StatusCode)
}

func TestAPI_HTMLForms(t *testing.T) {
	a := newTestApp(t)
	c := a.client(t)

	resp, err := c.PostForm(a.server.URL+"/registration", url.Values{
		"name": {"Alice"}, "address": {"1 Main St"}, "username": {"alice"}, "password": {"pw1"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?registered=1", resp.Header.Get("Location"))

	resp, err = c.PostForm(a.server.URL+"/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login?error="))

	resp, err = c.PostForm(a.server.URL+"/login", url.Values{"username": {"alice"}, "password": {"pw1"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/home", resp.Header.Get("Location"))

	resp, err = c.PostForm(a.server.URL+"/chatrooms", url.Values{"name": {"General"}, "description": {"hello"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	roomPath := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(roomPath, "/chatrooms/"))

	resp, err = c.Get(a.server.URL + roomPath)
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "General")

	resp, err = c.PostForm(a.server.URL+roomPath, url.Values{"_method": {"PUT"}, "name": {"General Chat"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body := doJSON(t, c, http.MethodGet, a.server.URL+roomPath, nil)
	assert.Equal(t, "General Chat", body["room"].(map[string]any)["name"])

	resp, err = c.Post(a.server.URL+roomPath+"?_method=DELETE", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/chatrooms", resp.Header.Get("Location"))

	resp, _ = doJSON(t, c, http.MethodGet, a.server.URL+roomPath, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = c.PostForm(a.server.URL+"/logout", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = doJSON(t, c, http.MethodGet, a.server.URL+"/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_RoomsJSON(t *testing.T) {
	a := newTestApp(t)
	c := a.client(t)
	register(t, a, c, "alice", "pw1")
	login(t, a, c, "alice", "pw1")

	resp, _ := doJSON(t, c, http.MethodPost, a.server.URL+"/chatrooms", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, c, http.MethodPost, a.server.URL+"/chatrooms", map[string]string{"name": "General"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["room"].(map[string]any)["id"].(string)

	resp, body = doJSON(t, c, http.MethodGet, a.server.URL+"/chatrooms", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["rooms"], 1)

	resp, body = doJSON(t, c, http.MethodGet, a.server.URL+"/chatrooms/"+id+"/audit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["events"])

	resp, _ = doJSON(t, c, http.MethodPut, a.server.URL+"/chatrooms/missing", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, c, http.MethodDelete, a.server.URL+"/chatrooms/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ProfileUpdate(t *testing.T) {
	a := newTestApp(t)
	c := a.client(t)
	register(t, a, c, "alice", "pw1")
	login(t, a, c, "alice", "pw1")

	resp, body := doJSON(t, c, http.MethodPut, a.server.URL+"/profile", map[string]string{
		"name": "Alice Liddell", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Alice Liddell", user["name"])
	assert.Equal(t, "1 Main St", user["address"])

	resp, _ = doJSON(t, c, http.MethodPut, a.server.URL+"/profile", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	form, err := c.PostForm(a.server.URL+"/profile", url.Values{"name": {"Alice"}, "phone": {"+1 555 0100"}})
	require.NoError(t, err)
	form.Body.Close()
	assert.Equal(t, http.StatusSeeOther, form.StatusCode)
	assert.Equal(t, "/profile/success", form.Header.Get("Location"))
}

func TestAPI_GeneralRoomOverWebsocket(t *testing.T) {
	a := newTestApp(t)

	alice := a.client(t)
	register(t, a, alice, "alice", "pw1")
	login(t, a, alice, "alice", "pw1")
	bob := a.client(t)
	register(t, a, bob, "bob", "pw2")
	login(t, a, bob, "bob", "pw2")

	_, body := doJSON(t, alice, http.MethodPost, a.server.URL+"/chatrooms", map[string]string{"name": "General"})
	roomID := body["room"].(map[string]any)["id"].(string)

	wsURL := "ws" + strings.TrimPrefix(a.server.URL, "http") + "/ws"
	dial := func(c *http.Client) *websocket.Conn {
		dialer := websocket.Dialer{Jar: c.Jar, HandshakeTimeout: 2 * time.Second}
		conn, _, err := dialer.Dial(wsURL, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}
	connA := dial(alice)
	connB := dial(bob)

	send := func(conn *websocket.Conn, event string, data any) {
		require.NoError(t, conn.WriteJSON(map[string]any{"event": event, "data": data}))
	}
	read := func(conn *websocket.Conn) string {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var frame struct {
			Event string `json:"event"`
			Data  struct {
				Message string `json:"message"`
			} `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		require.Equal(t, "message", frame.Event)
		return frame.Data.Message
	}
	waitMembers := func(n int) {
		require.Eventually(t, func() bool { return len(a.relay.Members(roomID)) == n }, 2*time.Second, 10*time.Millisecond)
	}

	send(connA, "joinChatRoom", roomID)
	send(connB, "joinChatRoom", roomID)
	waitMembers(2)

	send(connA, "chatMessage", map[string]string{"roomId": roomID, "message": "hi"})
	assert.Equal(t, "hi", read(connA))
	assert.Equal(t, "hi", read(connB))

	send(connB, "leaveChatRoom", roomID)
	waitMembers(1)

	send(connA, "chatMessage", map[string]string{"roomId": roomID, "message": "bye"})
	assert.Equal(t, "bye", read(connA))

	require.NoError(t, connB.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := connB.ReadMessage()
	assert.Error(t, err)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	a := newTestApp(t)
	c := a.client(t)

	resp, body := doJSON(t, c, http.MethodGet, a.server.URL+"/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, err := c.Get(a.server.URL + "/metrics")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(raw), `chatroom_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestAPI_CORS(t *testing.T) {
	a := newTestApp(t)

	req, err := http.NewRequest(http.MethodOptions, a.server.URL+"/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://allowed.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://allowed.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://other.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
