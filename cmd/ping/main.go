// Command ping is the container HEALTHCHECK: it calls /healthz on localhost
// and exits non-zero unless every dependency reports ok.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort    = 8080
	healthEndpoint = "/healthz"
	requestTimeout = 2 * time.Second
)

// Exit codes.
const (
	codeRequestFailed = 2
	codeBadHTTPStatus = 3
	codeDecodeError   = 4
	codeUnhealthy     = 5
)

// probeError carries the exit code for a failed probe
type probeError struct {
	code int
	msg  string
}

func (e *probeError) Error() string { return e.msg }

// healthResp mirrors the server's health body
type healthResp struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func main() {
	port := detectPort()
	url := fmt.Sprintf("http://localhost:%d%s", port, healthEndpoint)

	if err := probe(&http.Client{Timeout: requestTimeout}, url); err != nil {
		log.Print(err)
		var pe *probeError
		if errors.As(err, &pe) {
			os.Exit(pe.code)
		}
		os.Exit(1)
	}

	log.Printf("service healthy on port %d", port)
}

// probe GETs url. A 503 still has its body decoded so failing checks are named.
func probe(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return &probeError{codeRequestFailed, fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	var h healthResp
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil && !errors.Is(err, io.EOF) {
		return &probeError{codeDecodeError, fmt.Sprintf("decode error: %v", err)}
	}

	if resp.StatusCode == http.StatusServiceUnavailable || (h.Status != "" && h.Status != "ok") {
		return &probeError{codeUnhealthy, "service reported unhealthy: " + failing(h.Checks)}
	}
	if resp.StatusCode != http.StatusOK {
		return &probeError{codeBadHTTPStatus, fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode)}
	}
	return nil
}

// failing lists the checks that are not ok, sorted by name
func failing(checks map[string]string) string {
	var out []string
	for name, status := range checks {
		if status != "ok" {
			out = append(out, name+"="+status)
		}
	}
	if len(out) == 0 {
		return "unknown"
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

// detectPort parses APP_PORT and falls back to defaultPort.
func detectPort() int {
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p <= 65535 {
			return p
		}
	}
	return defaultPort
}
