package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"testing"

	"github.com/stretchr/testify/require"
)

// apiClient is a browser-like client that keeps cookies and the CSRF token
type apiClient struct {
	t         *testing.T
	baseURL   string
	http      *http.Client
	csrfToken string
}

type apiResponse struct {
	Status int
	Raw    []byte
	Body   map[string]any
}

func newClient(t *testing.T, baseURL string) *apiClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &apiClient{t: t, baseURL: baseURL, http: &http.Client{Jar: jar}}
}

func (c *apiClient) do(method, path string, payload any) apiResponse {
	c.t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.csrfToken != "" {
		req.Header.Set("X-CSRFToken", c.csrfToken)
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	result := apiResponse{Status: resp.StatusCode, Raw: raw}
	require.NoError(c.t, json.Unmarshal(raw, &result.Body), string(raw))
	return result
}

// fetchCSRF requests a CSRF token and uses it for subsequent requests
func (c *apiClient) fetchCSRF() {
	c.t.Helper()
	resp := c.do(http.MethodGet, "/api/csrf/", nil)
	require.Equal(c.t, http.StatusOK, resp.Status)
	c.csrfToken = resp.Body["csrfToken"].(string)
}
