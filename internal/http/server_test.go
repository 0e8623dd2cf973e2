package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"graminhealth/internal/chat"
	"graminhealth/internal/emergency"
	"graminhealth/internal/genai"
	"graminhealth/internal/locator"
	"graminhealth/internal/registry"
	"graminhealth/pkg"
)

type stubDialer struct {
	dialed []string
	err    error
}

func (d *stubDialer) Dial(number string) error {
	d.dialed = append(d.dialed, number)
	return d.err
}

func newTestServer(t *testing.T, client genai.Client, dialer emergency.Dialer) (*echo.Echo, *Server) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	newSession := func() *chat.Session {
		return chat.NewSession(client, chat.WithLogger(logger))
	}
	loc := locator.New(client, nil, locator.WithLogger(logger))
	srv := NewServer(registry.New(), newSession, loc, emergency.New(dialer), logger)
	e := echo.New()
	srv.Register(e)
	return e, srv
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, e *echo.Echo) pkg.SessionResponse {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/chat/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d", rec.Code)
	}
	var resp pkg.SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestCreateSessionReturnsWelcomeTranscript(t *testing.T) {
	e, _ := newTestServer(t, genai.NewMockClient("test"), nil)
	resp := createSession(t, e)
	if resp.SessionID == "" {
		t.Error("missing session id")
	}
	if len(resp.Transcript) != 1 || resp.Transcript[0].Text != chat.WelcomeMessage {
		t.Errorf("transcript = %+v", resp.Transcript)
	}
}

func TestPostMessageRoundTrip(t *testing.T) {
	e, _ := newTestServer(t, genai.NewMockClient("test"), nil)
	sess := createSession(t, e)

	rec := doJSON(e, http.MethodPost, "/api/chat/sessions/"+sess.SessionID+"/messages", `{"content":"I have a fever"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp pkg.SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Transcript) != 2 {
		t.Fatalf("appended %d turns, want 2", len(resp.Transcript))
	}
	if resp.Transcript[0].Role != pkg.RoleUser || resp.Transcript[0].Text != "I have a fever" {
		t.Errorf("user turn = %+v", resp.Transcript[0])
	}
	if resp.Transcript[1].Role != pkg.RoleAssistant || resp.Transcript[1].IsError {
		t.Errorf("assistant turn = %+v", resp.Transcript[1])
	}
}

func TestPostMessageEmptyContent(t *testing.T) {
	e, _ := newTestServer(t, genai.NewMockClient("test"), nil)
	sess := createSession(t, e)
	rec := doJSON(e, http.MethodPost, "/api/chat/sessions/"+sess.SessionID+"/messages", `{"content":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPostMessageUnknownSession(t *testing.T) {
	e, _ := newTestServer(t, genai.NewMockClient("test"), nil)
	rec := doJSON(e, http.MethodPost, "/api/chat/sessions/nope/messages", `{"content":"hello"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPostMessageRemoteFailureIsInBand(t *testing.T) {
	client := genai.Unavailable{Reason: errors.New("down")}
	e, _ := newTestServer(t, client, nil)
	sess := createSession(t, e)

	rec := doJSON(e, http.MethodPost, "/api/chat/sessions/"+sess.SessionID+"/messages", `{"content":"help"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (error is in-band)", rec.Code)
	}
	var resp pkg.SessionResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	last := resp.Transcript[len(resp.Transcript)-1]
	if !last.IsError || last.Text != chat.ConnectionTroubleMessage {
		t.Errorf("last turn = %+v", last)
	}
}

func TestDeleteSession(t *testing.T) {
	e, srv := newTestServer(t, genai.NewMockClient("test"), nil)
	sess := createSession(t, e)

	rec := doJSON(e, http.MethodDelete, "/api/chat/sessions/"+sess.SessionID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if srv.Registry.Len() != 0 {
		t.Errorf("registry still holds %d sessions", srv.Registry.Len())
	}
	rec = doJSON(e, http.MethodGet, "/api/chat/sessions/"+sess.SessionID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestLocatorQuery(t *testing.T) {
	e, _ := newTestServer(t, genai.NewMockClient("test"), nil)
	rec := doJSON(e, http.MethodPost, "/api/locator/query", `{"latitude":28.6,"longitude":77.2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp pkg.LocateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != string(locator.StateReady) {
		t.Errorf("state = %q", resp.State)
	}
	if len(resp.Facilities) == 0 {
		t.Error("no facilities returned")
	}
}

func TestLocatorQueryInvalidCoordinate(t *testing.T) {
	e, _ := newTestServer(t, genai.NewMockClient("test"), nil)
	rec := doJSON(e, http.MethodPost, "/api/locator/query", `{"latitude":123.0,"longitude":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLocatorQueryRemoteFailure(t *testing.T) {
	e, _ := newTestServer(t, genai.Unavailable{Reason: errors.New("down")}, nil)
	rec := doJSON(e, http.MethodPost, "/api/locator/query", `{"latitude":1,"longitude":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (error is a display state)", rec.Code)
	}
	var resp pkg.LocateResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.State != string(locator.StateError) || resp.Message != locator.MsgQueryFailed {
		t.Errorf("response = %+v", resp)
	}
}

func TestEmergencyContacts(t *testing.T) {
	e, _ := newTestServer(t, genai.NewMockClient("test"), nil)
	rec := doJSON(e, http.MethodGet, "/api/emergency/contacts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var contacts []pkg.EmergencyContact
	if err := json.Unmarshal(rec.Body.Bytes(), &contacts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(contacts) != 2 || contacts[0].Number != "102" || contacts[1].Number != "108" {
		t.Errorf("contacts = %+v", contacts)
	}
}

func TestEmergencyDial(t *testing.T) {
	dialer := &stubDialer{}
	e, _ := newTestServer(t, genai.NewMockClient("test"), dialer)

	rec := doJSON(e, http.MethodPost, "/api/emergency/dial", `{"number":"102"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(dialer.dialed) != 1 || dialer.dialed[0] != "102" {
		t.Errorf("dialed = %v", dialer.dialed)
	}

	rec = doJSON(e, http.MethodPost, "/api/emergency/dial", `{"number":"911"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown number status = %d, want 404", rec.Code)
	}
}

func TestEmergencyDialWithoutInjectedDialer(t *testing.T) {
	// The production wiring passes no dialer; the directory falls back to
	// the intent-logging dialer and valid numbers must still succeed.
	e, _ := newTestServer(t, genai.NewMockClient("test"), nil)
	rec := doJSON(e, http.MethodPost, "/api/emergency/dial", `{"number":"102"}`)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
