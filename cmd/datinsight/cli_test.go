// Package main tests document the expected behavior of the datinsight CLI.
//
// These are BLACK BOX tests - they test the CLI by executing the binary
// and checking stdout/stderr output.
//
// External dependencies mocked:
// - News, social and podcast APIs via DATINSIGHT_*_BASE_URL env vars
// - Profile storage via DATINSIGHT_CONFIG_DIR env var
//
// Test requirements (this file serves as documentation):
// - CLI has root command with version info
// - "feed" merges every provider newest first
// - "analyze" validates its input and fails fast without an API key
// - "context" saves, shows and clears the user context
// - "config show" never prints secrets
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var binaryPath string

// TestMain builds the binary once before running tests.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "datinsight-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	binaryPath = filepath.Join(dir, "datinsight")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = "."
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

// runCLI executes the CLI binary with given arguments and environment.
func runCLI(t *testing.T, env map[string]string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)

	// Isolate from the developer's own config and keys.
	cmd.Env = append(os.Environ(),
		"DATINSIGHT_CONFIG_DIR="+t.TempDir(),
		"NEWS_API_KEY=",
		"OPENAI_API_KEY=",
		"DATINSIGHT_NEWS_API_KEY=",
		"DATINSIGHT_ANALYSIS_API_KEY=",
		"DATINSIGHT_REMOTE_BASE_URL=",
	)
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	exitCode = 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("failed to run command: %v", err)
	}

	return outBuf.String(), errBuf.String(), exitCode
}

// runCLISimple runs CLI without custom environment.
func runCLISimple(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	return runCLI(t, nil, args...)
}

// newUpstream fakes the three feed providers.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/v2/top-headlines":
			fmt.Fprint(w, `{"status":"ok","articles":[{"source":{"name":"Tech Daily"},"title":"Chip Exports Tighten",
				"url":"https://example.com/chips","publishedAt":"2024-03-10T08:30:00Z"}]}`)
		case strings.HasPrefix(r.URL.Path, "/r/"):
			fmt.Fprint(w, `{"data":{"children":[{"data":{"id":"abc","title":"Open source model released","author":"dev_jane",
				"permalink":"/r/technology/comments/abc/","created_utc":1710064800,"ups":120}}]}}`)
		case r.URL.Path == "/search":
			fmt.Fprint(w, `{"resultCount":1,"results":[{"trackId":7,"trackName":"Weekly Tech Roundup","collectionName":"Signals",
				"releaseDate":"2024-03-09T07:00:00Z","trackTimeMillis":1800000}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func upstreamEnv(url string) map[string]string {
	return map[string]string{
		"DATINSIGHT_NEWS_API_KEY":      "test-key",
		"DATINSIGHT_NEWS_BASE_URL":     url,
		"DATINSIGHT_REDDIT_BASE_URL":   url,
		"DATINSIGHT_PODCASTS_BASE_URL": url,
	}
}

// TestRootCommand_Help verifies help output shows available commands.
func TestRootCommand_Help(t *testing.T) {
	stdout, _, _ := runCLISimple(t, "--help")
	output := strings.ToLower(stdout)

	expects := []string{"datinsight", "usage", "serve", "feed", "analyze", "context"}
	for _, want := range expects {
		if !strings.Contains(output, want) {
			t.Errorf("help should contain %q, got:\n%s", want, stdout)
		}
	}
}

// TestRootCommand_Version verifies version output.
func TestRootCommand_Version(t *testing.T) {
	stdout, _, _ := runCLISimple(t, "--version")

	if !strings.Contains(stdout, "datinsight version") {
		t.Errorf("version should show datinsight and version, got:\n%s", stdout)
	}
}

// TestFeedCommand_Help verifies feed help shows its options.
func TestFeedCommand_Help(t *testing.T) {
	stdout, _, _ := runCLISimple(t, "feed", "--help")
	output := strings.ToLower(stdout)

	for _, want := range []string{"interests", "limit"} {
		if !strings.Contains(output, want) {
			t.Errorf("feed help should contain %q, got:\n%s", want, stdout)
		}
	}
}

// TestFeedCommand_DisplaysItems verifies feed merges every provider.
func TestFeedCommand_DisplaysItems(t *testing.T) {
	server := newUpstream(t)

	stdout, stderr, exitCode := runCLI(t, upstreamEnv(server.URL), "feed", "--no-color")

	if exitCode != 0 {
		t.Fatalf("feed command should succeed, got exit code %d, stderr:\n%s", exitCode, stderr)
	}
	for _, want := range []string{"Chip Exports Tighten", "Open source model released", "Weekly Tech Roundup", "Showing 3 of 3 items"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output should contain %q, got:\n%s", want, stdout)
		}
	}
	// Social post is newest, podcast oldest.
	if strings.Index(stdout, "Open source model released") > strings.Index(stdout, "Weekly Tech Roundup") {
		t.Errorf("feed should be sorted newest first, got:\n%s", stdout)
	}
}

// TestFeedCommand_JSON verifies the machine-readable output.
func TestFeedCommand_JSON(t *testing.T) {
	server := newUpstream(t)

	stdout, stderr, exitCode := runCLI(t, upstreamEnv(server.URL), "feed", "--json")
	if exitCode != 0 {
		t.Fatalf("feed --json should succeed, stderr:\n%s", stderr)
	}

	var out struct {
		Items []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"items"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("output should be JSON: %v\n%s", err, stdout)
	}
	if out.Count != 3 || len(out.Items) != 3 {
		t.Errorf("should return 3 items, got count=%d len=%d", out.Count, len(out.Items))
	}
	if out.Items[0].Type != "social" {
		t.Errorf("newest item should be the social post, got %q", out.Items[0].Type)
	}
}

// TestFeedCommand_RejectsInvalidLimit verifies configuration validation.
func TestFeedCommand_RejectsInvalidLimit(t *testing.T) {
	_, stderr, exitCode := runCLISimple(t, "feed", "--limit", "0")

	if exitCode == 0 {
		t.Error("should fail with a zero limit")
	}
	if !strings.Contains(stderr, "feed.limit") {
		t.Errorf("error should name the setting, got:\n%s", stderr)
	}
}

// TestNewsCommand_WithoutKeyFails verifies news needs credentials.
func TestNewsCommand_WithoutKeyFails(t *testing.T) {
	_, stderr, exitCode := runCLISimple(t, "news")

	if exitCode == 0 {
		t.Error("news should fail without an API key")
	}
	if !strings.Contains(stderr, "NEWS_API_KEY") {
		t.Errorf("error should say news is not configured, got:\n%s", stderr)
	}
}

// TestAnalyzeCommand_RequiresTitle verifies analyze validates input first.
func TestAnalyzeCommand_RequiresTitle(t *testing.T) {
	_, stderr, exitCode := runCLISimple(t, "analyze")

	if exitCode == 0 {
		t.Error("should fail without a title")
	}
	if !strings.Contains(strings.ToLower(stderr), "title") {
		t.Errorf("error should mention title, got:\n%s", stderr)
	}
}

// TestAnalyzeCommand_RequiresAPIKey verifies analyze fails fast without a key.
func TestAnalyzeCommand_RequiresAPIKey(t *testing.T) {
	_, stderr, exitCode := runCLISimple(t, "analyze", "--title", "Chip Exports Tighten")

	if exitCode == 0 {
		t.Error("should fail without an OpenAI key")
	}
	if !strings.Contains(stderr, "OPENAI_API_KEY") {
		t.Errorf("error should name the missing key, got:\n%s", stderr)
	}
}

// TestAnalyzeCommand_MockMode verifies the demo analysis is complete.
func TestAnalyzeCommand_MockMode(t *testing.T) {
	stdout, stderr, exitCode := runCLISimple(t, "analyze", "--mock", "--json", "--title", "Chip Exports Tighten")
	if exitCode != 0 {
		t.Fatalf("mock analyze should succeed, stderr:\n%s", stderr)
	}

	var out struct {
		Predictions  []string `json:"predictions"`
		BiasAnalysis struct {
			Overall string `json:"overall"`
		} `json:"biasAnalysis"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("output should be JSON: %v\n%s", err, stdout)
	}
	if len(out.Predictions) != 5 {
		t.Errorf("analysis should carry 5 predictions, got %d", len(out.Predictions))
	}
	if out.BiasAnalysis.Overall == "" {
		t.Error("analysis should carry a bias label")
	}
}

// TestContextCommand_SaveShowClear verifies the profile round trip.
func TestContextCommand_SaveShowClear(t *testing.T) {
	env := map[string]string{"DATINSIGHT_CONFIG_DIR": t.TempDir()}

	stdout, stderr, exitCode := runCLI(t, env, "context", "set", "--background", "Platform engineer", "--goal", "ship faster")
	if exitCode != 0 {
		t.Fatalf("context set should succeed, stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, "context.json") {
		t.Errorf("should report where the context was saved, got:\n%s", stdout)
	}

	stdout, _, _ = runCLI(t, env, "context", "show", "--no-color")
	if !strings.Contains(stdout, "Platform engineer") || !strings.Contains(stdout, "ship faster") {
		t.Errorf("show should print the saved context, got:\n%s", stdout)
	}

	if _, stderr, exitCode = runCLI(t, env, "context", "clear"); exitCode != 0 {
		t.Fatalf("context clear should succeed, stderr:\n%s", stderr)
	}
	stdout, _, _ = runCLI(t, env, "context", "show", "--json")
	if strings.TrimSpace(stdout) != "null" {
		t.Errorf("show after clear should print no context, got:\n%s", stdout)
	}
}

// TestContextCommand_SetRequiresAField verifies empty profiles are refused.
func TestContextCommand_SetRequiresAField(t *testing.T) {
	_, _, exitCode := runCLISimple(t, "context", "set")

	if exitCode == 0 {
		t.Error("should refuse to save an empty context")
	}
}

// TestConfigCommand_ShowMasksSecrets verifies keys never reach the terminal.
func TestConfigCommand_ShowMasksSecrets(t *testing.T) {
	env := map[string]string{"DATINSIGHT_NEWS_API_KEY": "supersecretvalue"}

	stdout, stderr, exitCode := runCLI(t, env, "config", "show")

	if exitCode != 0 {
		t.Fatalf("config show should succeed, stderr:\n%s", stderr)
	}
	if strings.Contains(stdout, "supersecretvalue") {
		t.Errorf("config show must not print the API key, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "supe****") {
		t.Errorf("config show should print the masked key, got:\n%s", stdout)
	}
}

// TestConfigCommand_Help verifies config shows options.
func TestConfigCommand_Help(t *testing.T) {
	stdout, _, _ := runCLISimple(t, "config", "--help")

	if !strings.Contains(strings.ToLower(stdout), "config") {
		t.Errorf("should show config help, got:\n%s", stdout)
	}
}

// TestFeedCommand_OpenOutOfRange verifies --open checks the item index.
func TestFeedCommand_OpenOutOfRange(t *testing.T) {
	server := newUpstream(t)

	_, stderr, exitCode := runCLI(t, upstreamEnv(server.URL), "feed", "--no-color", "--open", "9")

	if exitCode == 0 {
		t.Error("should fail when the item does not exist")
	}
	if !strings.Contains(stderr, "only 3 items") {
		t.Errorf("error should say how many items were shown, got:\n%s", stderr)
	}
}
