package breach

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client checks passwords against the Have I Been Pwned range API using
// k-anonymity: only the first five characters of the SHA-1 digest leave
// the process. The raw password is never logged or persisted.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// IsBreached reports whether the password appears in the breach corpus.
// A transport or API failure is returned as an error so callers can treat
// the oracle as a hard dependency.
func (c *Client) IsBreached(ctx context.Context, rawPassword string) (bool, error) {
	sum := sha1.Sum([]byte(rawPassword))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/range/"+prefix, nil)
	if err != nil {
		return false, err
	}
	// Opt into response padding so the response size leaks nothing either.
	req.Header.Set("Add-Padding", "true")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return false, fmt.Errorf("breach api returned status %d", res.StatusCode)
	}

	scanner := bufio.NewScanner(res.Body)
	for scanner.Scan() {
		line := scanner.Text()
		hashPart, countPart, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(hashPart, suffix) {
			// Padded entries report a count of 0 and are not real hits.
			return strings.TrimSpace(countPart) != "0", nil
		}
	}
	return false, scanner.Err()
}
