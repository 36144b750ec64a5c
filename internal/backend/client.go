package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const authHeader = "x-auth-secret-key"

// Client talks to the check-in backend. It injects the secret-key header on
// every call and classifies failures uniformly; it holds no per-call state.
type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewClient creates a backend client. baseURL must not have a trailing slash.
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

// SetSecretKey replaces the key used for subsequent calls.
func (c *Client) SetSecretKey(key string) {
	c.secretKey = key
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithKey returns a copy of the client using the given secret key. Used by
// the display layer to act with a cookie-supplied admin key.
func (c *Client) WithKey(key string) *Client {
	return &Client{baseURL: c.baseURL, secretKey: key, client: c.client}
}

// do issues a request with the auth header and classifies the outcome. A
// missing key fails locally with AUTH_REQUIRED before any network call.
func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	if c.secretKey == "" {
		return &APIError{Kind: ErrAuthRequired}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &APIError{Kind: ErrParse, Message: err.Error()}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Kind: ErrHTTP, Message: err.Error()}
	}
	req.Header.Set(authHeader, c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// send issues a prepared request and classifies the outcome.
func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &APIError{Kind: ErrHTTP, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return &APIError{Kind: ErrSessionExpired, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Kind: ErrHTTP, StatusCode: resp.StatusCode, Message: string(msg)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: ErrParse, Message: err.Error()}
	}
	return nil
}

// Validate checks the secret key against the backend and returns the role.
func (c *Client) Validate() (*ValidateResult, error) {
	var result ValidateResult
	if err := c.do(http.MethodGet, "/ui/validate", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Users fetches one page of users, optionally filtered by search.
func (c *Client) Users(pageNumber, pageSize int, search string) (*UserPage, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	q := url.Values{}
	q.Set("page_number", strconv.Itoa(pageNumber))
	q.Set("page_size", strconv.Itoa(pageSize))
	if search != "" {
		q.Set("search", search)
	}

	var page UserPage
	if err := c.do(http.MethodGet, "/api/users?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// User fetches a single user by id.
func (c *Client) User(id string) (*User, error) {
	var env userEnvelope
	if err := c.do(http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateUser inserts a user and returns the new id.
func (c *Client) CreateUser(u *User) (string, error) {
	var env idEnvelope
	if err := c.do(http.MethodPost, "/api/users", u, &env); err != nil {
		return "", err
	}
	return env.Data.UserID, nil
}

// UpdateUser updates the given fields of a user.
func (c *Client) UpdateUser(id string, fields map[string]interface{}) error {
	return c.do(http.MethodPut, "/api/users/"+url.PathEscape(id), fields, nil)
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(id string) error {
	return c.do(http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil)
}

// CheckIn submits a check-in for the resolved user id and returns the
// updated record.
func (c *Client) CheckIn(userID string) (*User, error) {
	var env userEnvelope
	body := map[string]string{"user_id": userID}
	if err := c.do(http.MethodPost, "/api/checkin/checkin", body, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ImportUsers forwards a multipart spreadsheet upload to the backend's bulk
// import endpoint. contentType must carry the multipart boundary.
func (c *Client) ImportUsers(contentType string, body io.Reader) (*ImportSummary, error) {
	if c.secretKey == "" {
		return nil, &APIError{Kind: ErrAuthRequired}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/users/import", body)
	if err != nil {
		return nil, &APIError{Kind: ErrHTTP, Message: err.Error()}
	}
	req.Header.Set(authHeader, c.secretKey)
	req.Header.Set("Content-Type", contentType)

	var summary ImportSummary
	if err := c.send(req, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// CheckinLookup fetches the check-in state of a user for verification.
func (c *Client) CheckinLookup(id string) (*User, error) {
	var env userEnvelope
	if err := c.do(http.MethodGet, "/api/checkin/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// QRImageURL returns the URL of the static QR image for a user.
func (c *Client) QRImageURL(id string) string {
	return fmt.Sprintf("%s/qr/%s.png", c.baseURL, url.PathEscape(id))
}
