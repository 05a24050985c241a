package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurdiag/internal/diagnosis"
	"ayurdiag/internal/llm/llmtest"
)

const kaphaJSON = `{"dominant_dosha":"Kapha","imbalances":["Kapha in chest"],"diagnosis":"Kasa",
"supporting_evidence":{"symptoms_matching_kapha":["congestion"],"pulse_indication":"slow"},
"recommended_treatments":{"dietary":["light food"],"herbs":["Trikatu"],"therapies":["Swedana"],"lifestyle":["exercise"]}}`

func newTestServer(t *testing.T, fake *llmtest.Fake) *httptest.Server {
	t.Helper()
	engine := diagnosis.NewEngine(fake, nil, nil, diagnosis.Config{}, nil)
	srv := httptest.NewServer(NewServer(engine, nil))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestIndexAndHealth(t *testing.T) {
	srv := newTestServer(t, &llmtest.Fake{})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInfo(t *testing.T) {
	srv := newTestServer(t, &llmtest.Fake{})
	resp, err := http.Get(srv.URL + "/api/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info diagnosis.SystemInfo
	decodeBody(t, resp, &info)
	assert.Equal(t, "fake-model", info.Model.Model)
	assert.False(t, info.RetrieverReady)
}

func TestDiagnose(t *testing.T) {
	fake := &llmtest.Fake{Reply: kaphaJSON}
	srv := newTestServer(t, fake)

	resp := post(t, srv.URL+"/api/diagnose", `{"symptoms":"heavy and congested","use_rag":false,"temperature":0.4}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out diagnoseResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "Kapha", out.Diagnosis.DominantDosha)
	assert.Equal(t, diagnosis.List{"congestion"}, out.Diagnosis.SupportingEvidence.SymptomsMatchingDosha)
	assert.True(t, out.Validation.Valid)
	assert.False(t, out.Diagnosis.Metadata.UseRAG)
	assert.InDelta(t, 0.4, fake.Calls()[0].Options.Temperature, 1e-9)
}

func TestDiagnoseErrors(t *testing.T) {
	srv := newTestServer(t, &llmtest.Fake{Reply: "not json"})

	resp := post(t, srv.URL+"/api/diagnose", `{"symptoms":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv.URL+"/api/diagnose", `{bad`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv.URL+"/api/diagnose", `{"symptoms":"tired"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "not json", body["raw_content"])
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestDiagnoseHTML(t *testing.T) {
	srv := newTestServer(t, &llmtest.Fake{Reply: kaphaJSON})
	resp := post(t, srv.URL+"/api/diagnose/html", `{"symptoms":"heavy"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Ayurvedic Diagnostic Report")
	assert.Contains(t, body, "dosha-kapha")

	srv = newTestServer(t, &llmtest.Fake{Reply: "garbage"})
	resp = post(t, srv.URL+"/api/diagnose/html", `{"symptoms":"heavy"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body = readBody(t, resp)
	assert.Contains(t, body, "Diagnostic Error")
	assert.Contains(t, body, "garbage")
}

func TestBatch(t *testing.T) {
	fake := &llmtest.Fake{Respond: func(p string) (string, error) {
		if strings.Contains(p, `"broken"`) {
			return "??", nil
		}
		return kaphaJSON, nil
	}}
	srv := newTestServer(t, fake)

	resp := post(t, srv.URL+"/api/batch", `{"symptoms":["heavy","broken","sluggish"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out batchResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 2, out.Succeeded)
	assert.Equal(t, "broken", out.Results[1].Symptoms)
	assert.Equal(t, "??", out.Results[1].RawContent)

	resp = post(t, srv.URL+"/api/batch?format=html", `{"symptoms":["heavy"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp = post(t, srv.URL+"/api/batch", `{"symptoms":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	many := make([]string, maxBatch+1)
	for i := range many {
		many[i] = "x"
	}
	b, _ := json.Marshal(map[string]any{"symptoms": many})
	resp = post(t, srv.URL+"/api/batch", string(b))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatSessions(t *testing.T) {
	fake := &llmtest.Fake{Reply: "Vata governs movement."}
	srv := newTestServer(t, fake)

	resp := post(t, srv.URL+"/api/chat", `{"message":"Tell me about Vata dosha"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first chatResponse
	decodeBody(t, resp, &first)
	require.NotEmpty(t, first.SessionID)
	assert.Equal(t, "Vata governs movement.", first.Reply)
	assert.Equal(t, 2, first.HistoryLength)

	resp = post(t, srv.URL+"/api/chat", `{"session_id":"`+first.SessionID+`","message":"What's the weather like?"}`)
	var second chatResponse
	decodeBody(t, resp, &second)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, 4, second.HistoryLength)
	assert.Contains(t, strings.ToLower(second.Reply), "outside")
	assert.Len(t, fake.Calls(), 1)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/chat/"+first.SessionID, nil)
	require.NoError(t, err)
	dresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	dresp.Body.Close()
	assert.Equal(t, http.StatusNoContent, dresp.StatusCode)

	dresp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	dresp.Body.Close()
	assert.Equal(t, http.StatusNotFound, dresp.StatusCode)

	resp = post(t, srv.URL+"/api/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatEmptyMessageCreatesNoSession(t *testing.T) {
	s := NewServer(diagnosis.NewEngine(&llmtest.Fake{}, nil, nil, diagnosis.Config{}, nil), nil)
	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{"session_id":"missing","message":""}`} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Zero(t, s.sessions.Len())
}

func TestSessionsExpire(t *testing.T) {
	s := NewSessions()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	conv := s.Get("")
	assert.Same(t, conv, s.Get(conv.ID))

	now = now.Add(sessionTTL + time.Minute)
	other := s.Get(conv.ID)
	assert.NotEqual(t, conv.ID, other.ID)
	assert.Equal(t, 1, s.Len())
}

func TestListenAndServeShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServer(diagnosis.NewEngine(&llmtest.Fake{}, nil, nil, diagnosis.Config{}, nil), nil)
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
