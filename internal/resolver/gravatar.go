package resolver

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ignite/outreach/internal/config"
	"github.com/ignite/outreach/internal/pkg/httpretry"
	"github.com/ignite/outreach/internal/pkg/logger"
)

// GravatarClient looks up public Gravatar profiles by email hash.
// It implements NameLookup: every failure mode (timeout, 404, bad JSON,
// profile without a name) degrades to not-found.
type GravatarClient struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
}

// NewGravatarClient creates a Gravatar profile client. The per-call
// timeout comes from the config; it is deliberately short because the
// resolver holds a whole batch open while lookups run.
func NewGravatarClient(cfg config.LookupConfig) *GravatarClient {
	return &GravatarClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 1),
	}
}

// gravatarProfile is the subset of the profile JSON we read.
type gravatarProfile struct {
	Entry []struct {
		DisplayName string `json:"displayName"`
		Name        struct {
			GivenName  string `json:"givenName"`
			FamilyName string `json:"familyName"`
		} `json:"name"`
	} `json:"entry"`
}

// Lookup fetches the profile for an address. Prefers the display name,
// else composes given+family name. Never returns an error: absence of a
// profile is an expected outcome, not an exceptional one.
func (c *GravatarClient) Lookup(ctx context.Context, email string) (string, bool) {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	url := c.baseURL + "/" + hex.EncodeToString(hash[:]) + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", "outreach-sender")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("gravatar lookup failed", "email", email, "err", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 404 means no profile
		return "", false
	}

	var profile gravatarProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", false
	}
	if len(profile.Entry) == 0 {
		return "", false
	}

	entry := profile.Entry[0]
	if entry.DisplayName != "" {
		return entry.DisplayName, true
	}

	var parts []string
	if entry.Name.GivenName != "" {
		parts = append(parts, entry.Name.GivenName)
	}
	if entry.Name.FamilyName != "" {
		parts = append(parts, entry.Name.FamilyName)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}
