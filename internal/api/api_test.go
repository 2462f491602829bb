package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/brianmay/penguin-nurse/internal/config"
	"github.com/brianmay/penguin-nurse/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *storage.FileStorage
	cookie *http.Cookie
}

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

func newTestServer(t *testing.T, configure ...func(*config.Config)) *testServer {
	t.Helper()
	store, err := storage.NewFileStorage(t.TempDir(), internal.NewNopLogger(), storage.WithSaveDelay(10*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Defaults()
	cfg.Timezone = "UTC"
	for _, f := range configure {
		f(cfg)
	}
	app, err := NewApplication(cfg, store, internal.NewNopLogger())
	require.NoError(t, err)
	return &testServer{t: t, router: NewRouter(app), store: store}
}

func (s *testServer) addUser(username, password string, admin bool) *internal.User {
	s.t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(s.t, err)
	u, err := s.store.Users().CreateUser(context.Background(), &internal.NewUser{
		Username:     username,
		FullName:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsAdmin:      admin,
	})
	require.NoError(s.t, err)
	return u
}

func (s *testServer) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (s *testServer) login(username, password string) {
	s.t.Helper()
	s.cookie = nil
	w, _ := s.do(http.MethodPost, "/api/login", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			s.cookie = c
		}
	}
	require.NotNil(s.t, s.cookie)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealthAndAuth(t *testing.T) {
	s := newTestServer(t)
	s.addUser("penguin", "fish-please", false)

	w, env := s.do(http.MethodGet, "/_health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))

	w, env = s.do(http.MethodGet, "/api/wees?start=2024-05-01T00:00:00Z&end=2024-05-02T00:00:00Z", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Not Logged In", env.Error.Message)

	w, _ = s.do(http.MethodPost, "/api/login", map[string]string{"username": "penguin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":null}`, w.Body.String())

	s.login("penguin", "fish-please")
	w, env = s.do(http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "penguin", decode[internal.User](t, env).Username)
	assert.NotContains(t, string(env.Data), "password")

	w, _ = s.do(http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(http.MethodGet, "/api/timeline", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventRoutes(t *testing.T) {
	s := newTestServer(t)
	s.addUser("penguin", "fish-please", false)
	s.login("penguin", "fish-please")

	w, env := s.do(http.MethodPost, "/api/wees", `{"time":"2024-05-01T08:00:00+10:00","duration":"00:00:40","urgency":2,"mls":300,"colour":{"hue":60,"saturation":0.5,"value":0.8}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	wee := decode[internal.Wee](t, env)
	assert.Equal(t, 300, wee.Mls)
	assert.Equal(t, 40*time.Second, wee.Duration.Std())

	w, env = s.do(http.MethodPost, "/api/wees", `{"time":"2024-05-01T08:00:00Z","urgency":9,"colour":{"hue":500}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := env.Meta["fields"].(map[string]any)
	require.True(t, ok, w.Body.String())
	assert.Contains(t, fields, "urgency")
	assert.Contains(t, fields, "colour.hue")

	w, env = s.do(http.MethodPost, "/api/wees", `{"user_id":99,"time":"2024-05-01T08:00:00Z"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, internal.ErrUserMismatch.Error(), env.Error.Message)

	w, _ = s.do(http.MethodPost, "/api/wees", `{"time":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/wees?start=2024-04-30T21:00:00Z&end=2024-05-01T21:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]internal.Wee](t, env), 1)

	w, _ = s.do(http.MethodGet, "/api/wees?end=2024-05-01T21:00:00Z", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := fmt.Sprintf("/api/wees/%d", wee.ID)
	w, env = s.do(http.MethodPatch, path, `{"mls":350,"comments":"tea"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	wee = decode[internal.Wee](t, env)
	assert.Equal(t, 350, wee.Mls)
	require.NotNil(t, wee.Comments)
	assert.Equal(t, "tea", *wee.Comments)
	assert.Equal(t, 2, int(wee.Urgency))

	w, _ = s.do(http.MethodGet, "/api/wees/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, env = s.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "Failed to get wee: ")

	w, env = s.do(http.MethodPatch, "/api/refluxs/999", `{"severity":2}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "Failed to update reflux: ")

	w, env = s.do(http.MethodDelete, "/api/health_metrics/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "Failed to delete health metric: ")
}

func TestEventsAreScopedToUser(t *testing.T) {
	s := newTestServer(t)
	s.addUser("penguin", "fish-please", false)
	s.addUser("seal", "krill-please", false)

	s.login("penguin", "fish-please")
	w, env := s.do(http.MethodPost, "/api/notes", `{"time":"2024-05-01T08:00:00Z","comments":"private"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	note := decode[internal.Note](t, env)

	s.login("seal", "krill-please")
	w, _ = s.do(http.MethodGet, fmt.Sprintf("/api/notes/%d", note.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/notes/%d", note.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchCannotBlankRequiredFields(t *testing.T) {
	s := newTestServer(t)
	s.addUser("root", "admin-please", true)
	s.login("root", "admin-please")

	create := func(path, body string) string {
		w, env := s.do(http.MethodPost, path, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created struct {
			ID int64 `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &created))
		return fmt.Sprintf("%s/%d", path, created.ID)
	}
	wee := create("/api/wees", `{"time":"2024-05-01T08:00:00Z","mls":100}`)
	exercise := create("/api/exercises", `{"time":"2024-05-01T08:00:00Z","exercise_type":"walking"}`)
	consumption := create("/api/consumptions", `{"time":"2024-05-01T08:00:00Z","consumption_type":"digest"}`)
	consumable := create("/api/consumables", `{"name":"Green tea","unit":"millilitres"}`)
	user := create("/api/users", `{"username":"seal","full_name":"Seal","email":"seal@example.com","password":"krill-please","password_confirm":"krill-please"}`)

	for _, tt := range []struct {
		path, field string
	}{
		{wee, "time"},
		{exercise, "exercise_type"},
		{consumption, "consumption_type"},
		{consumable, "unit"},
		{user, "email"},
	} {
		w, env := s.do(http.MethodPatch, tt.path, fmt.Sprintf(`{%q:null}`, tt.field))
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s null: %s", tt.field, w.Body.String())
		require.NotNil(t, env.Error, tt.field)
		assert.Contains(t, env.Error.Message, internal.ErrNullValue.Error())

		blank := `""`
		if tt.field == "time" {
			blank = `"0001-01-01T00:00:00Z"`
		}
		w, env = s.do(http.MethodPatch, tt.path, fmt.Sprintf(`{%q:%s}`, tt.field, blank))
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s blank: %s", tt.field, w.Body.String())
		fields, _ := env.Meta["fields"].(map[string]any)
		assert.Contains(t, fields, tt.field)
	}

	w, env := s.do(http.MethodGet, wee, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[internal.Wee](t, env).Time.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))

	w, env = s.do(http.MethodGet, user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "seal@example.com", decode[internal.User](t, env).Email)

	w, _ = s.do(http.MethodPatch, wee, `{"comments":null}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestConsumptionAndConsumableRoutes(t *testing.T) {
	s := newTestServer(t)
	s.addUser("penguin", "fish-please", false)
	s.login("penguin", "fish-please")

	w, env := s.do(http.MethodPost, "/api/consumables", `{"name":"Green tea","unit":"millilitres"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tea := decode[internal.Consumable](t, env)

	w, env = s.do(http.MethodPost, "/api/consumables", `{"name":"Milk tea","unit":"millilitres"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	milkTea := decode[internal.Consumable](t, env)

	w, _ = s.do(http.MethodPost, "/api/consumables", `{"name":"Tea","unit":"cups"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, fmt.Sprintf("/api/consumables/%d/items", milkTea.ID), fmt.Sprintf(`{"consumable_id":%d,"quantity":200}`, tea.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = s.do(http.MethodPost, fmt.Sprintf("/api/consumables/%d/items", tea.ID), fmt.Sprintf(`{"consumable_id":%d}`, milkTea.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, "/api/consumables?q=tea", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]internal.Consumable](t, env), 2)

	w, env = s.do(http.MethodGet, fmt.Sprintf("/api/consumables/%d/parents", tea.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	parents := decode[[]internal.NestedConsumableItem](t, env)
	require.Len(t, parents, 1)
	assert.Equal(t, milkTea.ID, parents[0].Consumable.ID)

	w, env = s.do(http.MethodPost, "/api/consumptions", `{"time":"2024-05-01T09:00:00Z","consumption_type":"digest"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	consumption := decode[internal.Consumption](t, env)

	itemsPath := fmt.Sprintf("/api/consumptions/%d/items", consumption.ID)
	w, _ = s.do(http.MethodPost, itemsPath, fmt.Sprintf(`{"consumable_id":%d,"liquid_mls":250}`, milkTea.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = s.do(http.MethodPatch, fmt.Sprintf("%s/%d", itemsPath, milkTea.ID), `{"liquid_mls":300}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	item := decode[internal.ConsumptionConsumable](t, env)
	require.NotNil(t, item.LiquidMls)
	assert.Equal(t, 300.0, *item.LiquidMls)

	w, env = s.do(http.MethodGet, fmt.Sprintf("/api/consumptions/%d", consumption.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	withItems := decode[internal.ConsumptionWithItems](t, env)
	require.Len(t, withItems.Items, 1)
	assert.Equal(t, "Milk tea", withItems.Items[0].Consumable.Name)

	w, env = s.do(http.MethodGet, "/api/consumptions?start=2024-05-01T00:00:00Z&end=2024-05-02T00:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	listed := decode[[]internal.ConsumptionWithItems](t, env)
	require.Len(t, listed, 1)
	assert.Equal(t, consumption.ID, listed[0].Consumption.ID)
	require.Len(t, listed[0].Items, 1)
	assert.Equal(t, "Milk tea", listed[0].Items[0].Consumable.Name)
	require.NotNil(t, listed[0].Items[0].Nested.LiquidMls)
	assert.Equal(t, 300.0, *listed[0].Items[0].Nested.LiquidMls)

	w, env = s.do(http.MethodGet, fmt.Sprintf("/api/consumables/%d/consumptions", milkTea.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]internal.Consumption](t, env), 1)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("%s/%d", itemsPath, milkTea.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, env = s.do(http.MethodGet, itemsPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestTimelineRoute(t *testing.T) {
	s := newTestServer(t)
	s.addUser("penguin", "fish-please", false)
	s.login("penguin", "fish-please")

	for _, req := range []struct{ path, body string }{
		{"/api/poos", `{"time":"2024-05-01T08:00:00Z","bristol":4}`},
		{"/api/wees", `{"time":"2024-05-01T08:00:00Z","mls":100}`},
		{"/api/refluxs", `{"time":"2024-05-01T05:00:00Z","severity":3}`},
	} {
		w, _ := s.do(http.MethodPost, req.path, req.body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, env := s.do(http.MethodGet, "/api/timeline/2024-05-01", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tl struct {
		Date        string `json:"date"`
		DisplayDate string `json:"display_date"`
		Prev        string `json:"prev"`
		Next        string `json:"next"`
		Entries     []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tl))
	assert.Equal(t, "2024-05-01", tl.Date)
	assert.Equal(t, "Wednesday, 1 May, 2024", tl.DisplayDate)
	assert.Equal(t, "2024-04-30", tl.Prev)
	assert.Equal(t, "2024-05-02", tl.Next)
	require.Len(t, tl.Entries, 2)
	assert.Equal(t, "wee-1", tl.Entries[0].ID)
	assert.Equal(t, "poo-1", tl.Entries[1].ID)

	w, _ = s.do(http.MethodGet, "/api/timeline/yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodGet, "/api/timeline", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTimelineRouteRejectsMissingDayStart(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Timezone = "America/Sao_Paulo"
		cfg.DayStart = "00:00"
	})
	s.addUser("penguin", "fish-please", false)
	s.login("penguin", "fish-please")

	for _, date := range []string{"2018-11-04", "2018-11-03"} {
		w, env := s.do(http.MethodGet, "/api/timeline/"+date, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s: %s", date, w.Body.String())
		fields, _ := env.Meta["fields"].(map[string]any)
		assert.Contains(t, fields, "date", date)
	}

	w, _ := s.do(http.MethodGet, "/api/timeline/2018-11-05", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)
	s.addUser("penguin", "fish-please", false)
	s.addUser("root", "admin-please", true)

	s.login("penguin", "fish-please")
	w, env := s.do(http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Not Admin", env.Error.Message)

	s.login("root", "admin-please")
	w, env = s.do(http.MethodPost, "/api/users", `{"username":"seal","full_name":"Seal","email":"seal@example.com","password":"krill-please","password_confirm":"krill-please"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	seal := decode[internal.User](t, env)

	w, _ = s.do(http.MethodPost, "/api/users", `{"username":"seal","full_name":"Seal","email":"seal2@example.com","password":"krill-please","password_confirm":"krill-please"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(http.MethodPatch, fmt.Sprintf("/api/users/%d", seal.ID), `{"is_admin":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[internal.User](t, env).IsAdmin)

	w, env = s.do(http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]internal.User](t, env), 3)

	w, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", seal.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
