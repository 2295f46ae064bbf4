package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSlackAPI records chat.postMessage calls and serves canned responses.
type fakeSlackAPI struct {
	calls     []map[string]string
	responses []string
}

func (f *fakeSlackAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		call := map[string]string{}
		for key := range r.Form {
			call[key] = r.FormValue(key)
		}
		f.calls = append(f.calls, call)

		resp := `{"ok": true, "channel": "C123", "ts": "1700000000.000100"}`
		if len(f.responses) > 0 {
			resp = f.responses[0]
			if len(f.responses) > 1 {
				f.responses = f.responses[1:]
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	})
}

func newTestNotifier(t *testing.T, api *fakeSlackAPI) *SlackNotifier {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)
	return NewSlackNotifier("xoxb-test", "#competitive-intel", "Competitive Intel", ":dart:",
		slack.OptionAPIURL(server.URL+"/"))
}

func TestSlackNotifier_Send(t *testing.T) {
	api := &fakeSlackAPI{}
	n := newTestNotifier(t, api)

	ts, err := n.Send(context.Background(), "report text")
	require.NoError(t, err)
	assert.Equal(t, "1700000000.000100", ts)

	require.Len(t, api.calls, 1)
	call := api.calls[0]
	assert.Equal(t, "report text", call["text"])
	assert.Equal(t, "#competitive-intel", call["channel"])
	assert.Equal(t, "Competitive Intel", call["username"])
	assert.Equal(t, ":dart:", call["icon_emoji"])
	assert.Equal(t, "false", call["unfurl_links"])
	assert.Equal(t, "false", call["unfurl_media"])
}

func TestSlackNotifier_Send_ProviderFailure(t *testing.T) {
	// HTTP 200 with ok:false must still surface as an error.
	api := &fakeSlackAPI{responses: []string{`{"ok": false, "error": "invalid_auth"}`}}
	n := newTestNotifier(t, api)

	_, err := n.Send(context.Background(), "report text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Slack error")
	assert.Contains(t, err.Error(), "invalid_auth")
}

func TestSlackNotifier_Send_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewSlackNotifier("xoxb-test", "#competitive-intel", "Competitive Intel", ":dart:",
		slack.OptionAPIURL(server.URL+"/"))

	_, err := n.Send(context.Background(), "report text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Slack error")
}

func TestSlackNotifier_NotifyFailure(t *testing.T) {
	api := &fakeSlackAPI{}
	n := newTestNotifier(t, api)

	n.NotifyFailure(context.Background(), errors.New("Slack error: invalid_auth"))

	require.Len(t, api.calls, 1)
	notice := api.calls[0]["text"]
	assert.Contains(t, notice, "Report delivery failed")
	assert.Contains(t, notice, "invalid_auth")
}

func TestSlackNotifier_NotifyFailure_Swallowed(t *testing.T) {
	// The notice's own failure must not panic or propagate.
	api := &fakeSlackAPI{responses: []string{`{"ok": false, "error": "channel_not_found"}`}}
	n := newTestNotifier(t, api)

	n.NotifyFailure(context.Background(), errors.New("primary failure"))

	require.Len(t, api.calls, 1)
}

func TestSlackNotifier_Channel(t *testing.T) {
	n := NewSlackNotifier("xoxb-test", "#intel", "bot", ":dart:")
	assert.Equal(t, "#intel", n.Channel())
}
