package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
	"github.com/shaiso/cobrador/internal/gateway/whatsapp"
	"github.com/shaiso/cobrador/internal/repo"
	"github.com/shaiso/cobrador/internal/scheduler"
)

type fakeClientStore struct {
	clients    map[int64]*domain.Client
	lastFilter repo.ClientFilter
}

func (f *fakeClientStore) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	c, ok := f.clients[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClientStore) List(ctx context.Context, filter repo.ClientFilter) ([]domain.Client, error) {
	f.lastFilter = filter
	var out []domain.Client
	for _, c := range f.clients {
		out = append(out, *c)
	}
	return out, nil
}

type fakeLogStore struct {
	logs []domain.MessageLog
}

func (f *fakeLogStore) List(ctx context.Context, filter repo.LogFilter) ([]domain.MessageLog, error) {
	return f.logs, nil
}

type fakeUserStore struct {
	users map[int64]*domain.User
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

type fakeSender struct {
	sent    int
	tplType domain.TemplateType
	err     error
}

func (f *fakeSender) SendReminders(ctx context.Context, user *domain.User, clients []domain.Client, tplType domain.TemplateType, now time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.tplType = tplType
	return f.sent, nil
}

type fakeSchedulerInfo struct {
	running  bool
	cadences []scheduler.CadenceStatus
}

func (f *fakeSchedulerInfo) IsRunning() bool                   { return f.running }
func (f *fakeSchedulerInfo) Status() []scheduler.CadenceStatus { return f.cadences }

type fakeWhatsApp struct {
	status *whatsapp.InstanceStatus
	err    error
}

func (f *fakeWhatsApp) Status(ctx context.Context, sessionID int64) (*whatsapp.InstanceStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

func (f *fakeWhatsApp) Reconnect(ctx context.Context, sessionID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

type testDeps struct {
	clients *fakeClientStore
	logs    *fakeLogStore
	users   *fakeUserStore
	sender  *fakeSender
	sched   *fakeSchedulerInfo
	wa      *fakeWhatsApp
}

func newTestMux(t *testing.T, deps testDeps) *http.ServeMux {
	t.Helper()

	if deps.clients == nil {
		deps.clients = &fakeClientStore{}
	}
	if deps.logs == nil {
		deps.logs = &fakeLogStore{}
	}
	if deps.users == nil {
		deps.users = &fakeUserStore{}
	}
	if deps.sender == nil {
		deps.sender = &fakeSender{}
	}
	if deps.sched == nil {
		deps.sched = &fakeSchedulerInfo{}
	}
	if deps.wa == nil {
		deps.wa = &fakeWhatsApp{}
	}

	h := NewHandler(Config{
		Clients:   deps.clients,
		Logs:      deps.logs,
		Users:     deps.users,
		Sender:    deps.sender,
		Scheduler: deps.sched,
		WhatsApp:  deps.wa,
		Location:  time.UTC,
		Logger:    slog.New(slog.DiscardHandler),
	})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func testClient(id, userID int64) *domain.Client {
	return &domain.Client{
		ID:          id,
		UserID:      userID,
		Name:        "Maria",
		PhoneNumber: "11999998888",
		DueDate:     time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:      domain.ClientActive,
	}
}

func TestGetStatus(t *testing.T) {
	next := time.Date(2025, 3, 5, 9, 1, 0, 0, time.UTC)
	mux := newTestMux(t, testDeps{sched: &fakeSchedulerInfo{
		running:  true,
		cadences: []scheduler.CadenceStatus{{Name: "reminders", NextDue: next}},
	}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Data StatusResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Data.Running || body.Data.Timezone != "UTC" || len(body.Data.Cadences) != 1 {
		t.Errorf("data = %+v", body.Data)
	}
}

func TestListClients_FilterParsing(t *testing.T) {
	store := &fakeClientStore{clients: map[int64]*domain.Client{1: testClient(1, 10)}}
	mux := newTestMux(t, testDeps{clients: store})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clients?user_id=10&status=active&limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	f := store.lastFilter
	if f.UserID == nil || *f.UserID != 10 {
		t.Errorf("user_id filter = %v", f.UserID)
	}
	if f.Status == nil || *f.Status != domain.ClientActive {
		t.Errorf("status filter = %v", f.Status)
	}
	if f.Limit != 5 {
		t.Errorf("limit = %d", f.Limit)
	}
}

func TestListClients_InvalidParams(t *testing.T) {
	mux := newTestMux(t, testDeps{})

	for _, q := range []string{"user_id=abc", "status=weird", "limit=0"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clients?"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}

func TestGetClient_NotFound(t *testing.T) {
	mux := newTestMux(t, testDeps{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clients/42", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != ErrCodeNotFound {
		t.Errorf("code = %s", body.Error.Code)
	}
}

func TestRemindClient_DefaultTemplate(t *testing.T) {
	clients := &fakeClientStore{clients: map[int64]*domain.Client{1: testClient(1, 10)}}
	users := &fakeUserStore{users: map[int64]*domain.User{10: {ID: 10}}}
	sender := &fakeSender{sent: 1}
	mux := newTestMux(t, testDeps{clients: clients, users: users, sender: sender})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/clients/1/remind", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if sender.tplType != domain.TemplateReminderDueDate {
		t.Errorf("template = %s, want reminder_due_date", sender.tplType)
	}
	var body struct {
		Data RemindResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Sent != 1 {
		t.Errorf("sent = %d", body.Data.Sent)
	}
}

func TestRemindClient_InvalidTemplate(t *testing.T) {
	clients := &fakeClientStore{clients: map[int64]*domain.Client{1: testClient(1, 10)}}
	mux := newTestMux(t, testDeps{clients: clients})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/1/remind",
		strings.NewReader(`{"template_type":"spam"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWhatsAppStatus_GatewayDown(t *testing.T) {
	mux := newTestMux(t, testDeps{wa: &fakeWhatsApp{err: errors.New("connection refused")}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/whatsapp/1/status", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != ErrCodeBadGateway {
		t.Errorf("code = %s", body.Error.Code)
	}
}

func TestWhatsAppReconnect(t *testing.T) {
	mux := newTestMux(t, testDeps{wa: &fakeWhatsApp{}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/whatsapp/1/reconnect", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Data WhatsAppReconnectResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Data.Accepted {
		t.Error("accepted = false")
	}
}
