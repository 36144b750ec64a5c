package backend

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second), &hits
}

func TestMissingKeyFailsBeforeNetwork(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	c.SetSecretKey("")

	_, err := c.Validate()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrAuthRequired, apiErr.Kind)
	assert.Equal(t, int32(0), hits.Load(), "no network call with an empty key")
	assert.True(t, IsAuthError(err))
}

func TestAuthHeaderOnEveryRequest(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-auth-secret-key"))
		json.NewEncoder(w).Encode(ValidateResult{Role: "admin"})
	})

	result, err := c.Validate()
	require.NoError(t, err)
	assert.Equal(t, "admin", result.Role)
}

func TestUnauthorizedMapsToSessionExpired(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusUnauthorized)
	})

	_, err := c.Validate()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrSessionExpired, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, IsAuthError(err))
}

func TestServerErrorMapsToHTTPError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "user not found", http.StatusNotFound)
	})

	_, err := c.User("missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrHTTP, apiErr.Kind)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "user not found")
	assert.False(t, IsAuthError(err))
}

func TestMalformedBodyMapsToParseError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := c.Validate()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrParse, apiErr.Kind)
}

func TestUsersPagination(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page_number"))
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		assert.Equal(t, "ada", r.URL.Query().Get("search"))
		json.NewEncoder(w).Encode(UserPage{
			Message:      "ok",
			Data:         []User{{UserID: "42", Name: "Ada"}},
			Total:        31,
			CheckinTotal: 12,
		})
	})

	page, err := c.Users(2, 10, "ada")
	require.NoError(t, err)
	assert.Equal(t, 31, page.Total)
	assert.Equal(t, 12, page.CheckinTotal)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Ada", page.Data[0].Name)
}

func TestCheckInPostsUserID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/checkin/checkin", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "42", body["user_id"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Checked in",
			"data":    User{UserID: "42", Name: "Ada", IsCheckedIn: true},
		})
	})

	user, err := c.CheckIn("42")
	require.NoError(t, err)
	assert.Equal(t, "42", user.UserID)
	assert.True(t, user.IsCheckedIn)
}

func TestCreateUserReturnsID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"message":"created","data":{"user_id":"new-1"}}`))
	})

	id, err := c.CreateUser(&User{Name: "Grace"})
	require.NoError(t, err)
	assert.Equal(t, "new-1", id)
}

func TestImportUsersForwardsUpload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users/import", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-auth-secret-key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "guests.xlsx", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "spreadsheet bytes", string(content))

		json.NewEncoder(w).Encode(ImportSummary{
			Message: "Import users successfully",
			Data:    []string{"u-1", "u-2"},
			Total:   2,
		})
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "guests.xlsx")
	require.NoError(t, err)
	part.Write([]byte("spreadsheet bytes"))
	require.NoError(t, mw.Close())

	summary, err := c.ImportUsers(mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, []string{"u-1", "u-2"}, summary.Data)
}

func TestImportUsersRequiresKey(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	c.SetSecretKey("")

	_, err := c.ImportUsers("multipart/form-data; boundary=x", bytes.NewReader(nil))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrAuthRequired, apiErr.Kind)
	assert.Equal(t, int32(0), hits.Load())
}

func TestWithKeyLeavesOriginalUntouched(t *testing.T) {
	seen := make(chan string, 2)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("x-auth-secret-key")
		w.Write([]byte(`{"role":"admin"}`))
	})

	other := c.WithKey("other-key")
	_, err := other.Validate()
	require.NoError(t, err)
	_, err = c.Validate()
	require.NoError(t, err)

	assert.Equal(t, "other-key", <-seen)
	assert.Equal(t, "test-key", <-seen)
}

func TestQRImageURL(t *testing.T) {
	c := NewClient("http://backend:8000", "k", 0)
	assert.Equal(t, "http://backend:8000/qr/u%2F1.png", c.QRImageURL("u/1"))
}
