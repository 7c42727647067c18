package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"gupshup-gateway/internal/config"
	"gupshup-gateway/internal/database"
	"gupshup-gateway/internal/ws"
	"gupshup-gateway/pkg/gupshup"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []gupshup.Message
	id    string
	err   error
	dests []string
}

func (s *fakeSender) SendMessage(ctx context.Context, destination string, msg gupshup.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	s.dests = append(s.dests, destination)
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

func (s *fakeSender) Source() string { return "917834811114" }

// provider is a minimal partner API double. Handlers are keyed by "METHOD /path".
type provider struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []*http.Request
	forms    []url.Values
}

func (p *provider) handle(method, path string, fn http.HandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[method+" "+path] = fn
}

func (p *provider) respond(method, path string, status int, body any) {
	p.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

func (p *provider) formsTo(method, path string) []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []url.Values
	for i, r := range p.requests {
		if r.Method == method && r.URL.Path == path {
			out = append(out, p.forms[i])
		}
	}
	return out
}

func (p *provider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

type testGateway struct {
	router   *gin.Engine
	store    *database.Store
	sender   *fakeSender
	provider *provider
}

func newTestGateway(t *testing.T, opts ...gupshup.Option) *testGateway {
	t.Helper()

	p := &provider{routes: map[string]http.HandlerFunc{}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)
	p.respond(http.MethodPost, "/account/login", http.StatusOK, map[string]string{"token": signed})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		r.Body = io.NopCloser(bytes.NewReader(body))

		p.mu.Lock()
		p.requests = append(p.requests, r.Clone(context.Background()))
		p.forms = append(p.forms, form)
		route := p.routes[r.Method+" "+r.URL.Path]
		p.mu.Unlock()

		if route == nil {
			http.NotFound(w, r)
			return
		}
		route(w, r)
	}))
	t.Cleanup(server.Close)

	partner, err := gupshup.NewPartnerClient("a@b.com", "pw", append([]gupshup.Option{gupshup.WithBaseURL(server.URL)}, opts...)...)
	require.NoError(t, err)

	store, err := database.Open(&config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "api.db")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hub := ws.NewHub(zerolog.Nop())
	sender := &fakeSender{id: "gs-1"}

	r := gin.New()
	r.Use(RequestID(), RequestLogger(zerolog.Nop()))
	RegisterRoutes(r.Group("/api"),
		NewMessageHandler(sender, store, hub),
		NewContactHandler(store),
		NewPartnerHandler(partner, store, hub),
	)
	return &testGateway{router: r, store: store, sender: sender, provider: p}
}

func (g *testGateway) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// --- Messages ---

func TestSendMessageStoresOutbound(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(http.MethodPost, "/api/messages", map[string]any{
		"destination": "919999999999",
		"message":     map[string]any{"type": "image", "originalUrl": "https://a/b.jpg", "previewUrl": "https://a/b_s.jpg", "caption": "menu"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "gs-1", decode[map[string]any](t, w)["message_id"])

	require.Len(t, g.sender.sent, 1)
	assert.Equal(t, gupshup.ImageMessage{OriginalURL: "https://a/b.jpg", PreviewURL: "https://a/b_s.jpg", Caption: "menu"}, g.sender.sent[0])

	w = g.do(http.MethodGet, "/api/messages?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	messages := decode[[]map[string]any](t, w)
	require.Len(t, messages, 1)
	assert.Equal(t, "gs-1", messages[0]["provider_id"])
	assert.Equal(t, "[image]:https://a/b.jpg:menu", messages[0]["content"])
	assert.Equal(t, "submitted", messages[0]["status"])

	id := int(messages[0]["id"].(float64))
	w = g.do(http.MethodGet, "/api/messages/"+strconv.Itoa(id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = g.do(http.MethodGet, "/api/messages/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendMessageRejectsBadInput(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(http.MethodPost, "/api/messages", map[string]any{"destination": "91", "message": map[string]any{"type": "carousel"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = g.do(http.MethodPost, "/api/messages", map[string]any{"message": map[string]any{"type": "text", "text": "hi"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = g.do(http.MethodGet, "/api/messages?limit=many", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, g.sender.sent)
}

func TestSendMessageProviderFailure(t *testing.T) {
	g := newTestGateway(t)
	g.sender.err = &gupshup.SendError{
		Destination: "91",
		StatusCode:  http.StatusBadRequest,
		Err:         &gupshup.APIError{StatusCode: http.StatusBadRequest, Body: []byte(`{"message":"Invalid Destination"}`)},
	}

	w := g.do(http.MethodPost, "/api/messages", map[string]any{"destination": "91", "message": map[string]any{"type": "text", "text": "hi"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "Invalid Destination", body["error"])
	assert.EqualValues(t, http.StatusBadRequest, body["provider_status"])

	messages, err := g.store.ListMessages(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "failed", messages[0].Status)
}

func TestRequestIDHeader(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(http.MethodGet, "/api/contacts", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

// --- Partner endpoints ---

func TestListAppsUsesPartnerToken(t *testing.T) {
	g := newTestGateway(t)
	g.provider.respond(http.MethodGet, "/account/api/partnerApps", http.StatusOK, map[string]any{
		"partnerAppsList": []map[string]any{{"id": "app-1", "name": "demo"}},
	})

	w := g.do(http.MethodGet, "/api/apps", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	apps := decode[[]gupshup.App](t, w)
	require.Len(t, apps, 1)
	assert.Equal(t, "demo", apps[0].Name)
	assert.Len(t, g.provider.formsTo(http.MethodPost, "/account/login"), 1)
}

func TestProviderErrorsMapToBadGateway(t *testing.T) {
	g := newTestGateway(t)
	g.provider.respond(http.MethodGet, "/app/app-1/wallet/balance", http.StatusInternalServerError, map[string]string{"message": "wallet down"})

	w := g.do(http.MethodGet, "/api/apps/app-1/wallet", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "wallet down", body["error"])
	assert.EqualValues(t, 500, body["provider_status"])
}

func TestNotImplementedMapsTo501(t *testing.T) {
	g := newTestGateway(t, gupshup.WithoutRatings())

	assert.Equal(t, http.StatusNotImplemented, g.do(http.MethodGet, "/api/apps/app-1/ratings", nil).Code)
	assert.Equal(t, http.StatusNotImplemented, g.do(http.MethodPut, "/api/apps/app-1/profile", map[string]string{"city": "Pune"}).Code)
	assert.Equal(t, http.StatusNotImplemented, g.do(http.MethodGet, "/api/apps/app-1/logs/outbound?date=2024-03-01", nil).Code)
	assert.Equal(t, http.StatusNotImplemented, g.do(http.MethodGet, "/api/apps/app-1/logs/inbound?from=2024-03-01&to=2024-03-02", nil).Code)
	assert.Zero(t, g.provider.count())
}

func TestUpdateDLREventsEndpoint(t *testing.T) {
	g := newTestGateway(t)
	g.provider.respond(http.MethodPut, "/app/app-1/callback/mode", http.StatusOK, map[string]string{"status": "success"})

	w := g.do(http.MethodPut, "/api/apps/app-1/dlr-events", map[string]any{"modes": []string{"SENT", "READ"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = g.do(http.MethodPut, "/api/apps/app-1/dlr-events", map[string]any{"modes": []string{}})
	require.Equal(t, http.StatusOK, w.Code)

	w = g.do(http.MethodPut, "/api/apps/app-1/dlr-events", map[string]any{"modes": []string{"BOUNCED"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	forms := g.provider.formsTo(http.MethodPut, "/app/app-1/callback/mode")
	require.Len(t, forms, 2)
	assert.Equal(t, "SENT,READ", forms[0].Get("modes"))
	_, present := forms[1]["modes"]
	assert.False(t, present)
}

func TestDiscountAndUsageValidation(t *testing.T) {
	g := newTestGateway(t)
	g.provider.respond(http.MethodGet, "/app/app-1/discount", http.StatusOK, map[string]any{"dailyAppDiscountList": []any{}})
	g.provider.respond(http.MethodGet, "/app/app-1/usage", http.StatusOK, map[string]any{"partnerAppUsageList": []any{}})

	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodGet, "/api/apps/app-1/discount?year=2024&month=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodGet, "/api/apps/app-1/discount?month=3", nil).Code)
	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/api/apps/app-1/discount?year=2024&month=3", nil).Code)

	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodGet, "/api/apps/app-1/usage?from=2024-03-05&to=2024-03-01", nil).Code)
	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodGet, "/api/apps/app-1/usage?from=yesterday&to=2024-03-01", nil).Code)
	assert.Equal(t, http.StatusOK, g.do(http.MethodGet, "/api/apps/app-1/usage?from=2024-03-01&to=2024-03-05", nil).Code)
}

func TestBlockUserUpdatesContact(t *testing.T) {
	g := newTestGateway(t)
	g.provider.respond(http.MethodPut, "/app/app-1/block", http.StatusOK, map[string]string{"status": "success"})

	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodPut, "/api/apps/app-1/users/911234/block", map[string]any{}).Code)

	w := g.do(http.MethodPut, "/api/apps/app-1/users/911234/block", map[string]any{"blocked": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	forms := g.provider.formsTo(http.MethodPut, "/app/app-1/block")
	require.Len(t, forms, 1)
	assert.Equal(t, "true", forms[0].Get("isBlocked"))

	contacts, err := g.store.ListContacts(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "blocked", contacts[0].Status)
}

// --- Templates ---

func TestSyncTemplates(t *testing.T) {
	g := newTestGateway(t)
	g.provider.respond(http.MethodGet, "/app/app-1/templates", http.StatusOK, map[string]any{
		"templates": []map[string]any{
			{"id": "t1", "elementName": "welcome", "languageCode": "en", "status": "APPROVED"},
			{"id": "t2", "elementName": "promo", "languageCode": "en", "status": "REJECTED", "reason": "Promotional"},
		},
	})

	w := g.do(http.MethodPost, "/api/apps/app-1/templates/sync", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["count"])

	w = g.do(http.MethodGet, "/api/apps/app-1/templates/local", nil)
	require.Equal(t, http.StatusOK, w.Code)
	local := decode[[]map[string]any](t, w)
	require.Len(t, local, 2)
	assert.Equal(t, "promo", local[0]["element_name"])
	assert.Equal(t, "Promotional", local[0]["reason"])
}

func TestApplyTemplateValidation(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(http.MethodPost, "/api/apps/app-1/templates", map[string]any{
		"elementName": "promo", "languageCode": "en", "category": "MARKETING", "templateType": "IMAGE", "content": "Sale",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exampleMedia")
	assert.Zero(t, g.provider.count())
}

func TestBroadcastReportsPerDestination(t *testing.T) {
	g := newTestGateway(t)
	g.provider.handle(http.MethodPost, "/app/app-1/template/msg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := r.ParseForm(); err != nil || r.PostForm.Get("destination") == "000" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":"error","message":"Invalid Destination"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"submitted","messageId":"tm-` + r.PostForm.Get("destination") + `"}`))
	})

	w := g.do(http.MethodPost, "/api/apps/app-1/broadcast", map[string]any{
		"template_id":  "tpl-1",
		"params":       []string{"Asha"},
		"source":       "917834811114",
		"destinations": []string{"911", "000", "912"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		SentTo  int               `json:"sent_to"`
		Total   int               `json:"total"`
		Results []BroadcastResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.SentTo)
	assert.Equal(t, 3, body.Total)
	require.Len(t, body.Results, 3)
	assert.Equal(t, "tm-911", body.Results[0].MessageID)
	assert.Contains(t, body.Results[1].Error, "Invalid Destination")
	assert.Equal(t, "tm-912", body.Results[2].MessageID)

	messages, err := g.store.ListMessages(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, messages, 3)

	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodPost, "/api/apps/app-1/broadcast", map[string]any{"template_id": "tpl-1"}).Code)
}

func TestSendTemplate(t *testing.T) {
	g := newTestGateway(t)
	g.provider.respond(http.MethodPost, "/app/app-1/template/msg", http.StatusOK, map[string]string{"messageId": "tm-1"})

	w := g.do(http.MethodPost, "/api/apps/app-1/templates/send", map[string]any{
		"template_id": "tpl-1", "destination": "919999999999",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "tm-1", decode[map[string]any](t, w)["message_id"])

	forms := g.provider.formsTo(http.MethodPost, "/app/app-1/template/msg")
	require.Len(t, forms, 1)
	assert.Equal(t, "[]", forms[0].Get("params"))
}

func TestUploadSampleMedia(t *testing.T) {
	g := newTestGateway(t)
	g.provider.respond(http.MethodPost, "/app/app-1/upload/media", http.StatusOK, map[string]any{"handleId": map[string]string{"message": "4::aW1h"}})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "sample.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("file_type", "image/jpeg"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/apps/app-1/templates/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "4::aW1h", decode[map[string]any](t, w)["handle_id"])

	w = g.do(http.MethodGet, "/api/apps/app-1/templates/media", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	assert.Equal(t, http.StatusBadRequest, g.do(http.MethodPost, "/api/apps/app-1/templates/media", nil).Code)
}

func TestProfileEndpoints(t *testing.T) {
	g := newTestGateway(t)
	g.provider.respond(http.MethodGet, "/app/app-1/business/profile/about", http.StatusOK, map[string]any{"about": map[string]string{"message": "Tea"}})
	g.provider.respond(http.MethodPut, "/app/app-1/business/profile/about", http.StatusOK, map[string]string{"status": "success"})
	g.provider.respond(http.MethodDelete, "/app/app-1/business/profile/photo", http.StatusOK, map[string]string{"status": "success"})

	w := g.do(http.MethodGet, "/api/apps/app-1/profile/about", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tea", decode[map[string]any](t, w)["about"])

	assert.Equal(t, http.StatusOK, g.do(http.MethodPut, "/api/apps/app-1/profile/about", map[string]string{"about": "Coffee"}).Code)
	assert.Equal(t, "Coffee", g.provider.formsTo(http.MethodPut, "/app/app-1/business/profile/about")[0].Get("about"))

	assert.Equal(t, http.StatusOK, g.do(http.MethodDelete, "/api/apps/app-1/profile/photo", nil).Code)
}
