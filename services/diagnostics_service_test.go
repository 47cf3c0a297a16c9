package services

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"feedadmin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDoer answers every request with respond and records the URLs it saw.
type fakeDoer struct {
	mu      sync.Mutex
	urls    []string
	respond func(req *http.Request) (int, string)
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.urls = append(f.urls, req.URL.String())
	f.mu.Unlock()
	status, body := f.respond(req)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func (f *fakeDoer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}

func newDiagnostics(doer *fakeDoer) DiagnosticsService {
	return NewDiagnosticsService(DiagnosticsConfig{
		BasicDisplayURL: "https://basic.test/",
		GraphURL:        "https://graph.test/",
	}, doer, nil)
}

func TestDiagnosticsMissingParameters(t *testing.T) {
	doer := &fakeDoer{respond: func(*http.Request) (int, string) { return 200, `{}` }}
	svc := newDiagnostics(doer)

	for _, op := range models.DiagnosticsOperations {
		_, err := svc.Call(bg, models.DiagnosticsRequest{AccountID: "1784", AccessToken: "", Operation: op})
		var missing *MissingParameterError
		require.ErrorAs(t, err, &missing, op)
		assert.Equal(t, "access_token", missing.Parameter)

		_, err = svc.Call(bg, models.DiagnosticsRequest{AccountID: "", AccessToken: "tok", Operation: op})
		require.ErrorAs(t, err, &missing, op)
		assert.Equal(t, "account_id", missing.Parameter)
	}
	assert.Equal(t, 0, doer.count())
}

func TestDiagnosticsPagingRewrite(t *testing.T) {
	doer := &fakeDoer{respond: func(*http.Request) (int, string) {
		return 200, `{
			"data": [{"id": "1", "children": {"data": [], "paging": {"next": "https://graph.test/x?after=2&access_token=SECRET"}}}],
			"paging": {
				"cursors": {"before": "a", "after": "b"},
				"next": "https://graph.test/1784/media?after=b&access_token=SECRET",
				"previous": "https://graph.test/1784/media?before=a&access_token=SECRET"
			}
		}`
	}}
	svc := newDiagnostics(doer)

	out, err := svc.Call(bg, models.DiagnosticsRequest{
		AccountID:   "1784",
		AccessToken: "SECRET",
		AccountType: models.AccountTypeBusiness,
		Operation:   models.DiagMedia,
	})
	require.NoError(t, err)

	paging := out["paging"].(map[string]interface{})
	assert.Equal(t, true, paging["next"])
	assert.Equal(t, true, paging["previous"])
	assert.Equal(t, "b", paging["cursors"].(map[string]interface{})["after"])

	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "SECRET")

	require.Equal(t, 1, doer.count())
	assert.True(t, strings.HasPrefix(doer.urls[0], "https://graph.test/1784/media?"))
}

func TestDiagnosticsBaseByAccountType(t *testing.T) {
	doer := &fakeDoer{respond: func(*http.Request) (int, string) { return 200, `{"id":"1"}` }}
	svc := newDiagnostics(doer)

	for _, accountType := range []string{models.AccountTypeBasic, models.AccountTypePersonal} {
		_, err := svc.Call(bg, models.DiagnosticsRequest{AccountID: "1", AccessToken: "t", AccountType: accountType, Operation: models.DiagUserInfo})
		require.NoError(t, err)
	}
	_, err := svc.Call(bg, models.DiagnosticsRequest{AccountID: "1", AccessToken: "t", AccountType: models.AccountTypeBusiness, Operation: models.DiagUserInfo})
	require.NoError(t, err)

	require.Equal(t, 3, doer.count())
	assert.True(t, strings.HasPrefix(doer.urls[0], "https://basic.test/me?"))
	assert.True(t, strings.HasPrefix(doer.urls[1], "https://basic.test/me?"))
	assert.True(t, strings.HasPrefix(doer.urls[2], "https://graph.test/1?"))
}

func TestDiagnosticsTestHashtagsTwoSteps(t *testing.T) {
	doer := &fakeDoer{respond: func(req *http.Request) (int, string) {
		if strings.Contains(req.URL.Path, "ig_hashtag_search") {
			assert.Equal(t, "sunset", req.URL.Query().Get("q"))
			return 200, `{"data":[{"id":"17843857450040591"}]}`
		}
		return 200, `{"data":[{"id":"m1"}],"paging":{"next":"https://graph.test/next?access_token=SECRET"}}`
	}}
	svc := newDiagnostics(doer)

	out, err := svc.Call(bg, models.DiagnosticsRequest{
		AccountID:   "1784",
		AccessToken: "SECRET",
		Operation:   models.DiagTestHashtags,
		Params:      map[string]string{"hashtag": "#sunset"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, doer.count())
	assert.Contains(t, doer.urls[1], "/17843857450040591/top_media?")
	assert.Equal(t, true, out["paging"].(map[string]interface{})["next"])
}

func TestDiagnosticsTestHashtagsShortCircuits(t *testing.T) {
	cases := map[string]func(*http.Request) (int, string){
		"remote error": func(*http.Request) (int, string) {
			return 400, `{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`
		},
		"no id": func(*http.Request) (int, string) {
			return 200, `{"data":[]}`
		},
	}
	for name, respond := range cases {
		doer := &fakeDoer{respond: respond}
		svc := newDiagnostics(doer)

		_, err := svc.Call(bg, models.DiagnosticsRequest{AccountID: "1784", AccessToken: "t", Operation: models.DiagTestHashtags})
		var remote *RemoteApplicationError
		require.ErrorAs(t, err, &remote, name)
		assert.Equal(t, 1, doer.count(), name)
	}
}

func TestDiagnosticsRemoteErrorObject(t *testing.T) {
	doer := &fakeDoer{respond: func(*http.Request) (int, string) {
		return 200, `{"error":{"message":"Unsupported get request.","type":"GraphMethodException","code":100}}`
	}}
	svc := newDiagnostics(doer)

	_, err := svc.Call(bg, models.DiagnosticsRequest{AccountID: "1784", AccessToken: "t", Operation: models.DiagStories})
	var remote *RemoteApplicationError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "100", remote.Code)
	assert.Equal(t, "Unsupported get request.", remote.Message)
}

func TestDiagnosticsUndecodableBodyIsTransport(t *testing.T) {
	doer := &fakeDoer{respond: func(*http.Request) (int, string) { return 502, `<html>bad gateway</html>` }}
	svc := newDiagnostics(doer)

	_, err := svc.Call(bg, models.DiagnosticsRequest{AccountID: "1784", AccessToken: "t", Operation: models.DiagRecentHashtags})
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
}
