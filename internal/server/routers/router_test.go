package routers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/internal/entity"
	"oip/dpnotify/internal/server/handlers/notification"
	"oip/dpnotify/internal/server/handlers/webhook"
	"oip/dpnotify/pkg/ginx"
	"oip/dpnotify/pkg/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type recordingDispatcher struct{ sent []*alert.Notification }

func (d *recordingDispatcher) Dispatch(_ context.Context, n *alert.Notification) error {
	d.sent = append(d.sent, n)
	return nil
}

type brokenSet struct{}

func (brokenSet) Add(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

type fakeRepo struct {
	list     []*entity.Notification
	gotLimit int
}

func (r *fakeRepo) ListByOrder(_ context.Context, orderID string, limit int) ([]*entity.Notification, error) {
	r.gotLimit = limit
	out := make([]*entity.Notification, 0)
	for _, n := range r.list {
		if n.OrderID == orderID {
			out = append(out, n)
		}
	}
	return out, nil
}

type envelope struct {
	Meta ginx.Meta      `json:"meta"`
	Data json.RawMessage `json:"data"`
}

func newEngine(set alert.NotifiedSet, repo notification.Repository) (*gin.Engine, *recordingDispatcher) {
	log := logger.NewNopLogger()
	disp := &recordingDispatcher{}
	n := alert.NewNotifier(
		alert.NewMemoryFieldCache(),
		set,
		disp,
		alert.NewRecipientBook("qa@x.com", "mod@x.com", "pack@x.com"),
		alert.KeyFormatTagged,
		log,
	)
	engine := SetupRoutes("dpnotify", webhook.NewWebhookHandler(n, log), notification.NewNotificationHandler(repo, log), log)
	return engine, disp
}

func do(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func TestLivenessAndHealth(t *testing.T) {
	engine, _ := newEngine(alert.NewMemoryNotifiedSet(0), nil)

	w, _ := do(t, engine, http.MethodGet, "/", "")
	if w.Code != http.StatusOK || w.Body.String() != "✅ Webhook app is running" {
		t.Fatalf("GET / = %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}

	w, _ = do(t, engine, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
}

func TestWebhookRejectsInvalidPayloads(t *testing.T) {
	engine, disp := newEngine(alert.NewMemoryNotifiedSet(0), nil)

	cases := []struct {
		name string
		body string
		path string
	}{
		{"malformed json", `{"resource_type":`, "body"},
		{"wrong resource type", `{"resource_type":"product","data":{"id":"1"}}`, "resource_type"},
		{"missing data", `{"resource_type":"order"}`, "data"},
		{"missing id", `{"resource_type":"order","data":{"ref_field_1":"Done"}}`, "data.id"},
		{"null id", `{"resource_type":"order","data":{"id":null}}`, "data.id"},
		{"zero id", `{"resource_type":"order","data":{"id":0,"ref_field_1":"Done"}}`, "data.id"},
		{"false id", `{"resource_type":"order","data":{"id":false,"ref_field_1":"Done"}}`, "data.id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := do(t, engine, http.MethodPost, "/webhook", tc.body)
			if w.Code != http.StatusBadRequest || env.Meta.Message != "Invalid data" {
				t.Fatalf("got %d %+v", w.Code, env.Meta)
			}
			if len(env.Meta.Details) == 0 || env.Meta.Details[0].Path != tc.path {
				t.Fatalf("details = %+v, want path %s", env.Meta.Details, tc.path)
			}
		})
	}

	w, env := do(t, engine, http.MethodPost, "/webhook", `{"resource_type":"order","data":{"id":"   "}}`)
	if w.Code != http.StatusBadRequest || env.Meta.Message != "Invalid data" {
		t.Fatalf("blank id: %d %+v", w.Code, env.Meta)
	}
	if len(disp.sent) != 0 {
		t.Fatalf("invalid payloads must not dispatch")
	}
}

func TestWebhookOutcomes(t *testing.T) {
	engine, disp := newEngine(alert.NewMemoryNotifiedSet(0), nil)

	pending := `{"resource_type":"order","data":{"id":1001,"ref_field_1":"Pending"}}`
	done := `{"resource_type":"order","data":{"id":1001,"ref_field_1":"Done","ref_field_2":null,
		"destination":{"name":"Jane"},"order_lines":[{"order_qty":2,"item_name":"Widget","unit_price":3.5,"line_total_price":7}]}}`

	w, env := do(t, engine, http.MethodPost, "/webhook", pending)
	if w.Code != http.StatusOK || env.Meta.Message != "No updates to send" {
		t.Fatalf("pending: %d %+v", w.Code, env.Meta)
	}

	w, env = do(t, engine, http.MethodPost, "/webhook", done)
	if w.Code != http.StatusOK || env.Meta.Message != "OK" {
		t.Fatalf("done: %d %+v", w.Code, env.Meta)
	}
	if !strings.Contains(string(env.Data), `"changed_fields":["ref_field_1"]`) {
		t.Fatalf("data = %s", env.Data)
	}

	// 重复推送：缓存已是 Done，没有新变化
	w, env = do(t, engine, http.MethodPost, "/webhook", done)
	if w.Code != http.StatusOK || env.Meta.Message != "No updates to send" {
		t.Fatalf("redelivery: %d %+v", w.Code, env.Meta)
	}

	if len(disp.sent) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(disp.sent))
	}
	sent := disp.sent[0]
	if sent.OrderID != "1001" || sent.Subject != "🔍 QA Double Check marked Done for Order #1001" {
		t.Fatalf("sent = %+v", sent)
	}
	if !strings.Contains(sent.Text, "Customer: Jane\n") || !strings.HasSuffix(sent.Text, "2x Widget @ $3.5 each = $7") {
		t.Fatalf("text = %q", sent.Text)
	}
}

func TestWebhookOutOfOrderDuplicate(t *testing.T) {
	engine, disp := newEngine(alert.NewMemoryNotifiedSet(0), nil)

	steps := []struct {
		body string
		want string
	}{
		{`{"resource_type":"order","data":{"id":"A1","ref_field_1":"Done"}}`, "OK"},
		{`{"resource_type":"order","data":{"id":"A1","ref_field_1":"Pending","ref_field_2":"Done"}}`, "OK"},
		{`{"resource_type":"order","data":{"id":"A1","ref_field_1":"Done","ref_field_2":"Done"}}`, "Duplicate ignored"},
	}
	for i, step := range steps {
		w, env := do(t, engine, http.MethodPost, "/webhook", step.body)
		if w.Code != http.StatusOK || env.Meta.Message != step.want {
			t.Fatalf("step %d: %d %+v, want %q", i+1, w.Code, env.Meta, step.want)
		}
	}
	if len(disp.sent) != 2 {
		t.Fatalf("expected two dispatches, got %d", len(disp.sent))
	}
}

func TestWebhookStoreFailure(t *testing.T) {
	engine, disp := newEngine(brokenSet{}, nil)

	w, _ := do(t, engine, http.MethodPost, "/webhook", `{"resource_type":"order","data":{"id":"A1","ref_field_3":"Done"}}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if len(disp.sent) != 0 {
		t.Fatalf("store failure must not dispatch")
	}
}

func TestNotificationHistory(t *testing.T) {
	w, _ := do(t, mustEngine(nil), http.MethodGet, "/api/v1/orders/A1/notifications", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without repository, got %d", w.Code)
	}

	repo := &fakeRepo{list: []*entity.Notification{{
		ID:            "n-1",
		OrderID:       "A1",
		TransitionKey: "A1-ref_field_1=Done",
		Fields:        datatypes.JSON(`["ref_field_1"]`),
		Recipients:    datatypes.JSON(`["qa@x.com"]`),
		Subject:       "subject",
		Status:        entity.NotificationStatusSent,
		CreatedAt:     time.Now(),
	}}}
	engine := mustEngine(repo)

	w, env := do(t, engine, http.MethodGet, "/api/v1/orders/A1/notifications?limit=500", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if repo.gotLimit != maxLimitForTest {
		t.Fatalf("limit = %d", repo.gotLimit)
	}
	var list []map[string]interface{}
	if err := json.Unmarshal(env.Data, &list); err != nil || len(list) != 1 {
		t.Fatalf("data = %s (%v)", env.Data, err)
	}
	if list[0]["status"] != "SENT" || list[0]["recipients"].([]interface{})[0] != "qa@x.com" {
		t.Fatalf("item = %v", list[0])
	}

	w, _ = do(t, engine, http.MethodGet, "/api/v1/orders/A1/notifications?limit=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", w.Code)
	}

	w, env = do(t, engine, http.MethodGet, "/api/v1/orders/B2/notifications", "")
	if w.Code != http.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("empty history: %d %s", w.Code, env.Data)
	}
}

const maxLimitForTest = 200

func mustEngine(repo *fakeRepo) *gin.Engine {
	var r notification.Repository
	if repo != nil {
		r = repo
	}
	engine, _ := newEngine(alert.NewMemoryNotifiedSet(0), r)
	return engine
}
