package clients

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// PrivilegedFetcher is the out-of-process path that bypasses same-origin
// restrictions. Implementations return a data URL for the fetched image.
type PrivilegedFetcher interface {
	FetchImage(ctx context.Context, rawURL string) (string, error)
}

type helperRequest struct {
	Action string `json:"action"`
	URL    string `json:"url"`
}

type helperResponse struct {
	Success bool   `json:"success"`
	DataURL string `json:"dataUrl"`
}

// HelperFetcher shells out to a configured helper command, writing one
// {action:"fetchImage",url} JSON line on stdin and reading one response line
// from stdout. Any response other than {success:true,dataUrl} is an error,
// which sends the resolver to its direct path.
type HelperFetcher struct {
	command string
	args    []string
}

// NewHelperFetcher parses a space-separated command line. Empty input yields
// nil, meaning no privileged path is available.
func NewHelperFetcher(commandLine string) *HelperFetcher {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	return &HelperFetcher{command: fields[0], args: fields[1:]}
}

func (h *HelperFetcher) FetchImage(ctx context.Context, rawURL string) (string, error) {
	req, err := json.Marshal(helperRequest{Action: "fetchImage", URL: rawURL})
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, h.command, h.args...)
	cmd.Stdin = bytes.NewReader(append(req, '\n'))
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("helper command failed: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	if !scanner.Scan() {
		return "", fmt.Errorf("helper produced no response")
	}

	var resp helperResponse
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return "", fmt.Errorf("helper response is not valid JSON: %w", err)
	}
	if !resp.Success || resp.DataURL == "" {
		return "", fmt.Errorf("helper reported failure")
	}
	return resp.DataURL, nil
}
