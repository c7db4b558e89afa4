package confluence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentplexus/mcp-confluence-lite/config"
)

func jsonHandler(t *testing.T, check func(r *http.Request), response interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			panic(err)
		}
	}
}

func TestNewClient(t *testing.T) {
	auth := BasicAuth{Username: "user", Token: "token"}
	client := NewClient("https://example.atlassian.net/wiki", auth)

	if client.baseURL != "https://example.atlassian.net/wiki" {
		t.Errorf("NewClient() baseURL = %v, want https://example.atlassian.net/wiki", client.baseURL)
	}

	if client.httpClient != http.DefaultClient {
		t.Errorf("NewClient() httpClient should be default client")
	}
}

func TestNewClientWithOptions(t *testing.T) {
	auth := BasicAuth{Username: "user", Token: "token"}
	customClient := &http.Client{}
	client := NewClient("https://example.atlassian.net/wiki", auth, WithHTTPClient(customClient))

	if client.httpClient != customClient {
		t.Errorf("NewClient() with WithHTTPClient should set custom client")
	}
}

func TestBasicAuthApply(t *testing.T) {
	auth := BasicAuth{Username: "user", Token: "token"}
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	auth.Apply(req)

	username, password, ok := req.BasicAuth()
	if !ok {
		t.Fatal("BasicAuth.Apply() should set basic auth")
	}
	if username != "user" {
		t.Errorf("BasicAuth.Apply() username = %v, want user", username)
	}
	if password != "token" {
		t.Errorf("BasicAuth.Apply() password = %v, want token", password)
	}
}

func TestBearerAuthApply(t *testing.T) {
	auth := BearerAuth{Token: "mytoken"}
	req, _ := http.NewRequest("GET", "http://example.com", nil)
	auth.Apply(req)

	authHeader := req.Header.Get("Authorization")
	if authHeader != "Bearer mytoken" {
		t.Errorf("BearerAuth.Apply() Authorization = %v, want Bearer mytoken", authHeader)
	}
}

func TestAuthFor(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want AuthMethod
	}{
		{
			name: "cloud token",
			cfg:  config.Config{AuthMode: config.AuthToken, Username: "u@example.com", Secret: "tok"},
			want: BasicAuth{Username: "u@example.com", Token: "tok"},
		},
		{
			name: "personal access token",
			cfg:  config.Config{AuthMode: config.AuthToken, Secret: "pat"},
			want: BearerAuth{Token: "pat"},
		},
		{
			name: "server password",
			cfg:  config.Config{AuthMode: config.AuthBasic, Username: "admin", Secret: "pw"},
			want: BasicAuth{Username: "admin", Token: "pw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AuthFor(&tt.cfg); got != tt.want {
				t.Errorf("AuthFor() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{BaseURL: "https://example.com", AuthMode: config.AuthBasic, Username: "a", Secret: "b"}
	client := FromConfig(cfg)

	if client.BaseURL() != "https://example.com" {
		t.Errorf("FromConfig() BaseURL = %v, want https://example.com", client.BaseURL())
	}
	if client.auth != (BasicAuth{Username: "a", Token: "b"}) {
		t.Errorf("FromConfig() auth = %#v", client.auth)
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{
		StatusCode: 404,
		Message:    "failed to get space",
		Body:       `{"message": "No space with key"}`,
	}

	expected := "confluence API error 404: failed to get space"
	if err.Error() != expected {
		t.Errorf("APIError.Error() = %v, want %v", err.Error(), expected)
	}
}

func TestGetAllSpaces(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.URL.Path != "/rest/api/space" {
			t.Errorf("Expected path /rest/api/space, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("start") != "0" || r.URL.Query().Get("limit") != "5" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("Expected basic auth on request")
		}
	}, map[string]interface{}{
		"results": []map[string]string{{"key": "DEV", "name": "Development", "type": "global"}},
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "user", Token: "token"})
	resp, err := client.GetAllSpaces(context.Background(), 0, 5)

	if err != nil {
		t.Fatalf("GetAllSpaces() error = %v", err)
	}

	envelope, ok := resp.(map[string]interface{})
	if !ok {
		t.Fatalf("GetAllSpaces() response type = %T, want map", resp)
	}
	results, _ := envelope["results"].([]interface{})
	if len(results) != 1 {
		t.Errorf("GetAllSpaces() results = %d, want 1", len(results))
	}
}

func TestGetSpace(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.URL.Path != "/rest/api/space/DEV" {
			t.Errorf("Expected path /rest/api/space/DEV, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("expand") != "description.plain" {
			t.Errorf("Expected expand=description.plain, got %s", r.URL.RawQuery)
		}
	}, map[string]interface{}{
		"key":  "DEV",
		"name": "Development",
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{})
	resp, err := client.GetSpace(context.Background(), "DEV")

	if err != nil {
		t.Fatalf("GetSpace() error = %v", err)
	}

	space := resp.(map[string]interface{})
	if space["name"] != "Development" {
		t.Errorf("GetSpace() name = %v, want Development", space["name"])
	}
}

func TestGetSpace_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		if _, err := w.Write([]byte(`{"message": "No space found"}`)); err != nil {
			panic(err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{})
	_, err := client.GetSpace(context.Background(), "NOPE")

	if err == nil {
		t.Fatal("GetSpace() should return error for 404")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("GetSpace() error should be *APIError, got %T", err)
	}

	if apiErr.StatusCode != 404 {
		t.Errorf("APIError.StatusCode = %v, want 404", apiErr.StatusCode)
	}
	if apiErr.Body != `{"message": "No space found"}` {
		t.Errorf("APIError.Body = %v", apiErr.Body)
	}
}

func TestGetAllPagesFromSpace(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.URL.Path != "/rest/api/content" {
			t.Errorf("Expected path /rest/api/content, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("spaceKey") != "DEV" || q.Get("type") != "page" || q.Get("limit") != "10" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
	}, map[string]interface{}{
		"results": []map[string]string{{"id": "1", "title": "Home"}},
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{})
	if _, err := client.GetAllPagesFromSpace(context.Background(), "DEV", 0, 10); err != nil {
		t.Fatalf("GetAllPagesFromSpace() error = %v", err)
	}
}

func TestGetPageByTitle(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		q := r.URL.Query()
		if q.Get("title") != "Release Notes & FAQ" {
			t.Errorf("Expected decoded title, got %q", q.Get("title"))
		}
		if q.Get("expand") != "body.storage,version,space" {
			t.Errorf("Unexpected expand %q", q.Get("expand"))
		}
	}, map[string]interface{}{
		"results": []interface{}{
			map[string]interface{}{
				"id":    "12345",
				"title": "Release Notes & FAQ",
				"body": map[string]interface{}{
					"storage": map[string]string{"value": "<p>Hello</p>"},
				},
			},
		},
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{})
	page, err := client.GetPageByTitle(context.Background(), "DEV", "Release Notes & FAQ")

	if err != nil {
		t.Fatalf("GetPageByTitle() error = %v", err)
	}
	if page == nil {
		t.Fatal("GetPageByTitle() returned nil page")
	}
	if page["id"] != "12345" {
		t.Errorf("GetPageByTitle() id = %v, want 12345", page["id"])
	}
}

func TestGetPageByTitle_NoMatch(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, nil, map[string]interface{}{
		"results": []interface{}{},
		"size":    0,
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{})
	page, err := client.GetPageByTitle(context.Background(), "DEV", "Missing")

	if err != nil {
		t.Fatalf("GetPageByTitle() error = %v", err)
	}
	if page != nil {
		t.Errorf("GetPageByTitle() = %v, want nil", page)
	}
}

func TestCQL(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.URL.Path != "/rest/api/content/search" {
			t.Errorf("Expected path /rest/api/content/search, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("cql"); got != `space = "DEV" AND type = page` {
			t.Errorf("CQL query = %q", got)
		}
		if r.URL.Query().Get("limit") != "3" {
			t.Errorf("Expected limit=3, got %s", r.URL.RawQuery)
		}
	}, map[string]interface{}{"results": []interface{}{}}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{})
	if _, err := client.CQL(context.Background(), `space = "DEV" AND type = page`, 3); err != nil {
		t.Fatalf("CQL() error = %v", err)
	}
}

func TestServerInfo(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, func(r *http.Request) {
		if r.URL.Path != "/rest/applinks/1.0/manifest" {
			t.Errorf("Expected manifest path, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer pat" {
			t.Errorf("Authorization = %q, want bearer", r.Header.Get("Authorization"))
		}
	}, map[string]interface{}{
		"version":     "8.5.4",
		"buildNumber": 9012,
		"url":         "https://confluence.example.com",
	}))
	defer server.Close()

	client := NewClient(server.URL, BearerAuth{Token: "pat"})
	info, err := client.ServerInfo(context.Background())

	if err != nil {
		t.Fatalf("ServerInfo() error = %v", err)
	}
	if info["version"] != "8.5.4" {
		t.Errorf("ServerInfo() version = %v, want 8.5.4", info["version"])
	}
}

func TestServerInfo_UnexpectedShape(t *testing.T) {
	server := httptest.NewServer(jsonHandler(t, nil, []string{"not", "an", "object"}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{})
	if _, err := client.ServerInfo(context.Background()); err == nil {
		t.Fatal("ServerInfo() should fail for a non-object response")
	}
}

func TestGet_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`<html>login</html>`)); err != nil {
			panic(err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{})
	if _, err := client.GetAllSpaces(context.Background(), 0, 1); err == nil {
		t.Fatal("GetAllSpaces() should fail on a non-JSON body")
	}
}
