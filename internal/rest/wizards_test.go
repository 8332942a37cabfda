package rest

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dfryer1193/wizardry/shared/db/sqlite"
	"github.com/dfryer1193/wizardry/wizard/application"
	"github.com/dfryer1193/wizardry/wizard/persistence"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type testServer struct {
	router   *gin.Engine
	filesDir string
}

func newTestServer(t *testing.T, maxUploadBytes int64) *testServer {
	t.Helper()
	dir := t.TempDir()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: filepath.Join(dir, "test.db")})
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })

	filesDir := filepath.Join(dir, "files")
	store, err := persistence.NewFileAttachmentStore(filesDir)
	require.NoError(t, err)

	service := application.NewWizardService(
		persistence.NewWizardRepository(database.DB()),
		store,
		application.ServiceConfig{Naming: application.LegacyNaming{}},
	)

	router := gin.New()
	NewApi(router, NewWizardHandler(service, maxUploadBytes), filesDir)

	return &testServer{router: router, filesDir: filesDir}
}

func (s *testServer) do(t *testing.T, method, path string, body []byte, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) doJSON(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return s.do(t, method, path, []byte(body), "application/json")
}

func (s *testServer) upload(t *testing.T, path, filename string, content []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(uploadField, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return s.do(t, http.MethodPost, path, buf.Bytes(), mw.FormDataContentType())
}

func TestCreateWizard(t *testing.T) {
	s := newTestServer(t, 0)

	w, env := s.doJSON(t, http.MethodPost, "/wizards", `{"name":"Gandalf","title":"The Grey","age":2019}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "OK", env.Msg)
	assert.JSONEq(t, `{"id":1,"name":"Gandalf","title":"The Grey","age":2019,"image_name":null}`, string(env.Data))
}

func TestCreateWizard_BadRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "malformed json", body: `{"name":`, wantMsg: "Bad Request"},
		{name: "missing age", body: `{"name":"Gandalf","title":"The Grey"}`, wantMsg: "Bad Request"},
		{name: "blank name", body: `{"name":"  ","title":"The Grey","age":1}`, wantMsg: "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, 0)

			w, env := s.doJSON(t, http.MethodPost, "/wizards", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 400, env.Code)
			assert.Equal(t, tt.wantMsg, env.Msg)
			assert.Empty(t, env.Data)
		})
	}
}

func TestWizardLifecycle(t *testing.T) {
	s := newTestServer(t, 0)

	_, env := s.doJSON(t, http.MethodGet, "/wizards", "")
	assert.JSONEq(t, `[]`, string(env.Data))

	s.doJSON(t, http.MethodPost, "/wizards", `{"name":"Saruman","title":"The White","age":2019}`)
	s.doJSON(t, http.MethodPost, "/wizards", `{"name":"Gandalf","title":"The Grey","age":2019}`)

	_, env = s.doJSON(t, http.MethodGet, "/wizards", "")
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, float64(1), list[0]["id"])
	assert.Equal(t, float64(2), list[1]["id"])

	w, env := s.doJSON(t, http.MethodPut, "/wizards/2", `{"name":"Gandalf","title":"The White","age":2020}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"name":"Gandalf","title":"The White","age":2020,"image_name":null}`, string(env.Data))

	w, env = s.doJSON(t, http.MethodGet, "/wizards/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":2,"name":"Gandalf","title":"The White","age":2020,"image_name":null}`, string(env.Data))

	w, env = s.doJSON(t, http.MethodDelete, "/wizards/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Delete successful", env.Msg)
	assert.Empty(t, env.Data)

	w, env = s.doJSON(t, http.MethodGet, "/wizards/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", env.Msg)
}

func TestNotFoundRoutes(t *testing.T) {
	s := newTestServer(t, 0)

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/wizards/1", ""},
		{http.MethodPut, "/wizards/1", `{"name":"Gandalf","title":"The White","age":1}`},
		{http.MethodDelete, "/wizards/1", ""},
		{http.MethodGet, "/wizards/1/image", ""},
		{http.MethodDelete, "/wizards/1/image", ""},
	}

	for _, r := range requests {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			w, env := s.doJSON(t, r.method, r.path, r.body)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, 404, env.Code)
			assert.Equal(t, "Not Found", env.Msg)
		})
	}

	w, env := s.upload(t, "/wizards/1/image", "wiz.png", []byte("PNGDATA"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", env.Msg)
}

func TestInvalidID(t *testing.T) {
	s := newTestServer(t, 0)

	w, env := s.doJSON(t, http.MethodGet, "/wizards/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid wizard id", env.Msg)
}

func TestImageLifecycle(t *testing.T) {
	s := newTestServer(t, 0)
	s.doJSON(t, http.MethodPost, "/wizards", `{"name":"Gandalf","title":"The Grey","age":2019}`)

	w, env := s.upload(t, "/wizards/1/image", "wiz.png", []byte("PNGDATA"))
	require.Equal(t, http.StatusOK, w.Code)

	var first string
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.True(t, strings.HasSuffix(first, ".png"))

	_, env = s.doJSON(t, http.MethodGet, "/wizards/1", "")
	var wizard map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &wizard))
	assert.Equal(t, first, wizard["image_name"])

	w, _ = s.do(t, http.MethodGet, "/wizards/1/image", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PNGDATA", w.Body.String())

	w, _ = s.do(t, http.MethodGet, "/files/"+first, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PNGDATA", w.Body.String())

	w, env = s.doJSON(t, http.MethodDelete, "/wizards/1/image", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Image removed", env.Msg)

	_, err := os.Stat(filepath.Join(s.filesDir, first))
	assert.True(t, os.IsNotExist(err))

	w, env = s.doJSON(t, http.MethodGet, "/wizards/1/image", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", env.Msg)
}

func TestUploadImage_BadRequest(t *testing.T) {
	s := newTestServer(t, 64)
	s.doJSON(t, http.MethodPost, "/wizards", `{"name":"Gandalf","title":"The Grey","age":2019}`)

	w, env := s.doJSON(t, http.MethodPost, "/wizards/1/image", `{"file":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Bad Request", env.Msg)

	w, env = s.upload(t, "/wizards/1/image", "big.png", bytes.Repeat([]byte("x"), 1024))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Bad Request", env.Msg)

	entries, err := os.ReadDir(s.filesDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
