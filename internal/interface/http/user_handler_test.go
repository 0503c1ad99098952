package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/project-tracker-api/internal/application"
	"github.com/oksasatya/project-tracker-api/internal/domain/entity"
	"github.com/oksasatya/project-tracker-api/internal/infrastructure/memory"
)

func init() { gin.SetMode(gin.TestMode) }

type stubUploader struct{ got []byte }

func (s *stubUploader) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	s.got, _ = io.ReadAll(r)
	return "https://cdn.test/" + objectPath, nil
}

type stubSearcher struct{ hits []entity.User }

func (s stubSearcher) Search(context.Context, string, int) ([]entity.User, error) { return s.hits, nil }

func newUserRouter(t *testing.T, d application.UserDeps) (*gin.Engine, *entity.User) {
	t.Helper()
	users := memory.NewUserRepository()
	u := &entity.User{Email: "ann@example.com", Name: "Ann", Password: "hash", IsEmailVerified: true}
	require.NoError(t, users.Create(context.Background(), u))

	logger, _ := test.NewNullLogger()
	d.Users, d.Logger = users, logger
	h := NewUserHandler(application.NewUserService(d), logger)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userID", u.ID); c.Next() })
	r.GET("/me", h.GetProfile)
	r.POST("/me/avatar", h.UploadAvatar)
	r.GET("/search", h.Search)
	return r, u
}

func avatarRequest(t *testing.T, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="me.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, _ = part.Write(body)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/me/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUserHandler_UploadAvatar(t *testing.T) {
	up := &stubUploader{}
	r, u := newUserRouter(t, application.UserDeps{Uploader: up})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, avatarRequest(t, "image/png", []byte("\x89PNG")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []byte("\x89PNG"), up.got)
	assert.Contains(t, w.Body.String(), `"profilePicture":"https://cdn.test/avatars/`+u.ID+`/`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, avatarRequest(t, "text/plain", []byte("hi")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), application.MsgNotAnImage)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/me/avatar", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_Search(t *testing.T) {
	r, _ := newUserRouter(t, application.UserDeps{Searcher: stubSearcher{hits: []entity.User{
		{ID: "u2", Name: "Bob", Email: "bob@example.com", Password: "secret-hash"},
	}}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?q=bob&size=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")

	var body struct {
		Data []map[string]any `json:"data"`
		Meta map[string]any   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "u2", body.Data[0]["_id"])
	assert.EqualValues(t, 1, body.Meta["count"])
}

func TestUserHandler_GetProfile(t *testing.T) {
	r, u := newUserRouter(t, application.UserDeps{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"_id":"`+u.ID+`"`)
	assert.NotContains(t, w.Body.String(), "hash")
}
