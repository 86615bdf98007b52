package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"taskList/internal/app"
	"taskList/internal/config"
	"taskList/internal/handlers/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "0",
			Host:           "127.0.0.1",
			AllowedOrigins: []string{"http://localhost:3000"},
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   5 * time.Second,
		},
		Logging:    config.LoggingConfig{Development: true},
		Repository: config.RepositoryConfig{Type: "inmemory"},
	}
}

type apiSuite struct {
	t      *testing.T
	server *httptest.Server
}

func newAPI(t *testing.T) *apiSuite {
	t.Helper()

	a, err := app.New(testConfig()).Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)

	server := httptest.NewServer(a.Router())
	t.Cleanup(server.Close)
	return &apiSuite{t: t, server: server}
}

func (s *apiSuite) do(method, path, body string) (*http.Response, []byte) {
	s.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp, data
}

func (s *apiSuite) create(description string) dto.TaskResponse {
	s.t.Helper()
	resp, body := s.do("POST", "/tasks", `{"description":"`+description+`"}`)
	require.Equal(s.t, http.StatusCreated, resp.StatusCode, string(body))

	var created dto.TaskResponse
	require.NoError(s.t, json.Unmarshal(body, &created))
	return created
}

func (s *apiSuite) list() []dto.TaskResponse {
	s.t.Helper()
	resp, body := s.do("GET", "/tasks", "")
	require.Equal(s.t, http.StatusOK, resp.StatusCode)

	var tasks []dto.TaskResponse
	require.NoError(s.t, json.Unmarshal(body, &tasks))
	return tasks
}

func TestAPI_CreateTrimmed(t *testing.T) {
	api := newAPI(t)

	created := api.create("  Buy milk ")
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Buy milk", created.Description)
	assert.False(t, created.Completed)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func TestAPI_CreateBlankRejected(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do("POST", "/tasks", `{"description":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION_ERROR")
	assert.Empty(t, api.list())
}

func TestAPI_UpdateCompletedKeepsDescription(t *testing.T) {
	api := newAPI(t)
	created := api.create("Buy milk")

	resp, body := api.do("PUT", "/tasks/"+itoa(created.ID), `{"completed":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated dto.TaskResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Description)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestAPI_UpdateBlankOnlyRejected(t *testing.T) {
	api := newAPI(t)
	created := api.create("Buy milk")

	resp, _ := api.do("PUT", "/tasks/"+itoa(created.ID), `{"description":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.do("PUT", "/tasks/"+itoa(created.ID), `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	tasks := api.list()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Description)
	assert.Equal(t, created.UpdatedAt, tasks[0].UpdatedAt)
}

func TestAPI_UpdateUnknown(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do("PUT", "/tasks/404", `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_FOUND")

	resp, _ = api.do("PUT", "/tasks/abc", `{"completed":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_DeleteUnknownKeepsCount(t *testing.T) {
	api := newAPI(t)
	api.create("A")
	api.create("B")

	resp, _ := api.do("DELETE", "/tasks/999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Len(t, api.list(), 2)
}

func TestAPI_DeleteOne(t *testing.T) {
	api := newAPI(t)
	created := api.create("A")

	resp, body := api.do("DELETE", "/tasks/"+itoa(created.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var deleted dto.DeleteTaskResponse
	require.NoError(t, json.Unmarshal(body, &deleted))
	assert.Equal(t, created.ID, deleted.ID)
	assert.Empty(t, api.list())
}

func TestAPI_DeleteAll(t *testing.T) {
	api := newAPI(t)
	api.create("A")
	api.create("B")
	api.create("C")

	resp, body := api.do("DELETE", "/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var deleted dto.DeleteAllResponse
	require.NoError(t, json.Unmarshal(body, &deleted))
	assert.Equal(t, int64(3), deleted.Count)
	assert.Empty(t, api.list())

	resp, body = api.do("DELETE", "/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"count":0`)
}

func TestAPI_ListMostRecentFirst(t *testing.T) {
	api := newAPI(t)
	api.create("A")
	api.create("B")

	tasks := api.list()
	require.Len(t, tasks, 2)
	assert.Equal(t, "B", tasks[0].Description)
	assert.Equal(t, "A", tasks[1].Description)
}

func TestAPI_ListEmptyIsArray(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do("GET", "/tasks", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(body))
}

func TestAPI_UnsupportedMediaType(t *testing.T) {
	api := newAPI(t)

	req, err := http.NewRequest("POST", api.server.URL+"/tasks", strings.NewReader("description=A"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := api.server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestAPI_WithoutContentType(t *testing.T) {
	api := newAPI(t)

	send := func(body string) *http.Response {
		req, err := http.NewRequest("POST", api.server.URL+"/tasks", strings.NewReader(body))
		require.NoError(t, err)
		resp, err := api.server.Client().Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	assert.Equal(t, http.StatusBadRequest, send(`{"description":"   "}`).StatusCode)
	assert.Equal(t, http.StatusCreated, send(`{"description":"A"}`).StatusCode)
	assert.Len(t, api.list(), 1)
}

func TestAPI_TrailingDataRejected(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do("POST", "/tasks", `{"description":"a"} trailing`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "BAD_REQUEST")
	assert.Empty(t, api.list())
}

func TestAPI_LongDescription(t *testing.T) {
	api := newAPI(t)

	long := strings.Repeat("x", 256)
	created := api.create(long)
	assert.Equal(t, long, created.Description)

	longer := strings.Repeat("y", 70000)
	resp, _ := api.do("PUT", "/tasks/"+itoa(created.ID), `{"description":"`+longer+`"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, longer, api.list()[0].Description)
}

func TestAPI_Health(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do("GET", "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","service":"task-list","storage":"inmemory"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestAPI_Metrics(t *testing.T) {
	api := newAPI(t)
	api.list()

	resp, body := api.do("GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `tasks_http_requests_total{method="GET",route="/tasks`)
}

func TestAPI_StaticClient(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do("GET", "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/app.js")

	resp, _ = api.do("GET", "/app.js", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_CORS(t *testing.T) {
	api := newAPI(t)

	req, err := http.NewRequest("OPTIONS", api.server.URL+"/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PUT")

	resp, err := api.server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PUT")
}

func TestAPI_RequestIDPropagated(t *testing.T) {
	api := newAPI(t)

	req, err := http.NewRequest("DELETE", api.server.URL+"/tasks/abc", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-42")

	resp, err := api.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var errResp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "req-42", errResp.RequestID)
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))
}

func TestApp_InitUnknownRepository(t *testing.T) {
	cfg := testConfig()
	cfg.Repository.Type = "sqlite"

	_, err := app.New(cfg).Init(context.Background())
	assert.Error(t, err)
}

func TestApp_InitWithTracing(t *testing.T) {
	cfg := testConfig()
	cfg.Tracing = config.TracingConfig{Enabled: true, ServiceName: "task-list", Exporter: "none", SampleRatio: 1}

	a, err := app.New(cfg).Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest("GET", "/tasks", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())

	cfg.Tracing.Exporter = "jaeger"
	_, err = app.New(cfg).Init(context.Background())
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a, err := app.New(testConfig()).Init(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("сервер не остановился")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
