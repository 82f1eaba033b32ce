// Utilities for importing a session from a request copied out of browser devtools ("Copy as cURL").
package shared

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlURLRe    = regexp.MustCompile(`(?:^|\s)['"]?(https?://[^\s'"]+)`)
)

// CurlRequest holds the target URL and headers of a parsed cURL command.
type CurlRequest struct {
	URL     string
	Headers map[string]string
}

// ParseCurlFile reads a .sh file containing a cURL command and parses it.
func ParseCurlFile(filepath string) (*CurlRequest, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand extracts the URL and headers from a cURL command.
//
// Header names are canonicalised to lower case.
func ParseCurlCommand(data []byte) (*CurlRequest, error) {
	cmd := strings.ReplaceAll(string(data), "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	req := &CurlRequest{Headers: make(map[string]string)}
	for _, match := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		line := match[1]
		if line == "" {
			line = match[2]
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		req.Headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	if m := curlURLRe.FindStringSubmatch(cmd); m != nil {
		req.URL = m[1]
	}

	if req.URL == "" && len(req.Headers) == 0 {
		return nil, fmt.Errorf("%w: no url or headers found in curl command", ErrInvalidInput)
	}
	return req, nil
}

// Token returns the raw credential from the Authorization header.
//
// The server reads the token verbatim, so a "Bearer " prefix is dropped.
func (c *CurlRequest) Token() (string, error) {
	auth := c.Headers["authorization"]
	auth = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if auth == "" {
		return "", fmt.Errorf("%w: no authorization header in curl command", ErrNoCredential)
	}
	return auth, nil
}

// BaseURL returns the API root of the copied request: scheme, host and the
// path up to and including its "/api" segment.
func (c *CurlRequest) BaseURL() (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: bad url %q", ErrInvalidInput, c.URL)
	}

	p := u.Path
	if idx := strings.Index(p, "/api"); idx >= 0 {
		p = p[:idx+len("/api")]
	} else {
		p = ""
	}
	return u.Scheme + "://" + u.Host + p, nil
}
