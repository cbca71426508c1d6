package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	c.getenv = func(k string) string { return env[k] }

	var out bytes.Buffer
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGetCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token env-token" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		q := r.URL.Query()
		if q.Get("limit") != "2" || q.Get("archived") != "false" {
			t.Errorf("query = %v", q)
		}
		if q.Get("starting_after") == "" {
			fmt.Fprint(w, `{"data":[{"id":"1"},{"id":"2"}],"links":{"next":"/v3/orgs?starting_after=2"}}`)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"3"}],"links":{}}`)
	}))
	defer server.Close()

	cfg := writeConfig(t, fmt.Sprintf("[snyk]\nbase_url = %q\ntoken = \"file-token\"\n", server.URL+"/v3"))
	out, err := runCLI(t, map[string]string{envSnykToken: "env-token"},
		"get", "/orgs", "--config", cfg, "--limit", "2", "-p", "archived=false")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, out)
	}
	if len(records) != 3 || records[2]["id"] != "3" {
		t.Errorf("records = %v", records)
	}
}

func TestGetCommandMissingToken(t *testing.T) {
	cfg := writeConfig(t, "")
	_, err := runCLI(t, nil, "get", "/orgs", "--config", cfg)
	if !apierrors.Is(err, apierrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestV1Command(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/org/o/projects?page=2>; rel="next"`, server.URL))
			fmt.Fprint(w, `{"org":{"id":"o"},"projects":[{"id":"a"}]}`)
			return
		}
		fmt.Fprint(w, `{"org":{"id":"o","page":2},"projects":[{"id":"b"}]}`)
	}))
	defer server.Close()

	cfg := writeConfig(t, fmt.Sprintf("[snyk]\nv1_base_url = %q\ntoken = \"t\"\n", server.URL+"/api/v1"))
	out, err := runCLI(t, nil, "v1", "org/o/projects", "--config", cfg, "--list", "projects")
	if err != nil {
		t.Fatalf("v1 error: %v", err)
	}

	var obj struct {
		Org      map[string]any      `json:"org"`
		Projects []map[string]string `json:"projects"`
	}
	if err := json.Unmarshal([]byte(out), &obj); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(obj.Projects) != 2 {
		t.Errorf("projects = %v, want 2 entries", obj.Projects)
	}
	if obj.Org["page"] != float64(2) {
		t.Errorf("org = %v, want last page's org", obj.Org)
	}
}

func TestQuotaCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resources":{"core":{"limit":5000,"remaining":4000,"reset":4102444800},"search":{"limit":30,"remaining":30,"reset":4102444800}}}`)
	}))
	defer server.Close()

	cfg := writeConfig(t, fmt.Sprintf("[github]\nbase_url = %q\n", server.URL))
	out, err := runCLI(t, nil, "quota", "--config", cfg, "--planned", "500")
	if err != nil {
		t.Fatalf("quota error: %v", err)
	}
	for _, want := range []string{"500 items fit", "core", "search", "1000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigPathCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	out, err := runCLI(t, nil, "config", "path")
	if err != nil {
		t.Fatalf("config path error: %v", err)
	}
	if !strings.Contains(out, filepath.Join(dir, "snyk-sync", "config.toml")) {
		t.Errorf("output = %q", out)
	}
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    map[string]any
		wantErr bool
	}{
		{"empty", nil, map[string]any{}, false},
		{"string", []string{"origin=github"}, map[string]any{"origin": "github"}, false},
		{"booleans", []string{"a=true", "b=false"}, map[string]any{"a": true, "b": false}, false},
		{"repeated", []string{"t=x", "t=y"}, map[string]any{"t": []any{"x", "y"}}, false},
		{"value with equals", []string{"q=a=b"}, map[string]any{"q": "a=b"}, false},
		{"missing equals", []string{"origin"}, nil, true},
		{"empty key", []string{"=x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseParams() = %v, want %v", got, tt.want)
			}
		})
	}
}
