package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/outreach/internal/config"
	"github.com/ignite/outreach/internal/dispatch"
	"github.com/ignite/outreach/internal/mailer"
	"github.com/ignite/outreach/internal/registry"
	"github.com/ignite/outreach/internal/resolver"
)

type stubLookup struct{}

func (stubLookup) Lookup(_ context.Context, _ string) (string, bool) { return "", false }

// recordingMailer accepts everything and remembers what it sent.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg *mailer.Message) (*mailer.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, *msg)
	return &mailer.Result{Success: true, MessageID: "test-id"}, nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newTestServer(t *testing.T) (*httptest.Server, *recordingMailer) {
	t.Helper()

	rec := &recordingMailer{}

	cfg := &config.Config{}
	cfg.Dispatch = config.DispatchConfig{
		MaxRetries:        1,
		RateLimitMillis:   1,
		BackoffStepMillis: 1,
	}

	sw := mailer.NewSwitcher(rec)
	eng := dispatch.NewEngine(sw, cfg.Dispatch)
	res := resolver.New(stubLookup{}, 10)
	reg := registry.New()

	s := NewServer(cfg, res, eng, reg, sw)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts, rec
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestRoot(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParseEmails(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/parse-emails", map[string]string{
		"rawEmails": "john.doe@x.com, not-an-email, JOHN.DOE@x.com\nbob@x.com",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 3, body["totalParsed"])
	assert.EqualValues(t, 2, body["validCount"])
	assert.EqualValues(t, 1, body["invalidCount"])

	invalid, ok := body["invalidEmails"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"not-an-email"}, invalid)

	preview, ok := body["previewSample"].([]any)
	require.True(t, ok)
	require.Len(t, preview, 2)
	first := preview[0].(map[string]any)
	assert.Equal(t, "john.doe@x.com", first["email"])
	assert.Equal(t, "Dear John Doe,", first["greeting"])
}

func TestParseEmailsEmptyInput(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/parse-emails", map[string]string{"rawEmails": "  \n "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "No emails provided", body["error"])
}

func TestParseEmailsPreviewCapped(t *testing.T) {
	ts, _ := newTestServer(t)

	raw := "a@x.com,b@x.com,c@x.com,d@x.com,e@x.com,f@x.com,g@x.com"
	resp := postJSON(t, ts.URL+"/api/parse-emails", map[string]string{"rawEmails": raw})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 7, body["validCount"])
	preview := body["previewSample"].([]any)
	assert.Len(t, preview, 5)
}

func TestConfigureSMTPValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/config", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Email and Password are required", body["error"])
}

func TestConfigureSMTP(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/config", map[string]string{
		"email":    "ops@x.com",
		"password": "app-password",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "SMTP Configured successfully", body["message"])
}

func TestSendCampaignValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	cases := []struct {
		name    string
		payload map[string]any
		wantErr string
	}{
		{
			name:    "no recipients",
			payload: map[string]any{"subject": "s", "body": "b"},
			wantErr: "Recipients list is empty",
		},
		{
			name: "missing subject",
			payload: map[string]any{
				"recipients": []map[string]string{{"email": "a@x.com"}},
				"body":       "b",
			},
			wantErr: "Subject and Body are required",
		},
		{
			name: "missing body",
			payload: map[string]any{
				"recipients": []map[string]string{{"email": "a@x.com"}},
				"subject":    "s",
			},
			wantErr: "Subject and Body are required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/send-campaign", tc.payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, tc.wantErr, body["error"])
		})
	}
}

func TestCampaignStatusNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/campaign-status/unknown-id")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Campaign not found", body["error"])
}

func TestSendCampaignFullFlow(t *testing.T) {
	ts, rec := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/send-campaign", map[string]any{
		"recipients": []map[string]string{
			{"email": "a@x.com", "name": "Ann"},
			{"email": "b@x.com"},
		},
		"subject": "Quarterly update",
		"body":    "<p>Hello team</p>",
		"footer":  map[string]any{"name": "Ops Team"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Campaign started successfully", body["message"])
	campaignID, ok := body["campaignId"].(string)
	require.True(t, ok)
	require.NotEmpty(t, campaignID)
	assert.Equal(t, "/api/campaign-status/"+campaignID, body["statusEndpoint"])

	// Dispatch runs in the background; poll until terminal.
	deadline := time.Now().Add(5 * time.Second)
	var status map[string]any
	for {
		r, err := http.Get(ts.URL + "/api/campaign-status/" + campaignID)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, r.StatusCode)
		status = decodeBody(t, r)
		if status["status"] == "completed" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("campaign never completed, last status: %v", status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	assert.EqualValues(t, 2, status["total"])
	assert.EqualValues(t, 2, status["sent"])
	assert.EqualValues(t, 0, status["failed"])

	recips := status["recipients"].([]any)
	require.Len(t, recips, 2)
	for _, raw := range recips {
		entry := raw.(map[string]any)
		assert.Equal(t, "sent", entry["status"])
	}

	require.Equal(t, 2, rec.count())
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, "a@x.com", rec.sent[0].To)
	assert.Contains(t, rec.sent[0].HTML, "Dear Ann,")
	assert.Equal(t, "Ops Team", rec.sent[0].FromName)
	assert.Contains(t, rec.sent[1].HTML, "Hello,")
}
