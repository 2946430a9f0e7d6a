package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaiso/cobrador/internal/domain"
)

type fakeSettingsStore struct {
	settings    *domain.ScheduleSettings
	morningRuns []time.Time
	reportRuns  []time.Time
}

func (f *fakeSettingsStore) GetOrCreate(ctx context.Context, userID int64) (*domain.ScheduleSettings, error) {
	return f.settings, nil
}

func (f *fakeSettingsStore) SetLastMorningRun(ctx context.Context, userID int64, day time.Time) error {
	f.morningRuns = append(f.morningRuns, day)
	return nil
}

func (f *fakeSettingsStore) SetLastReportRun(ctx context.Context, userID int64, day time.Time) error {
	f.reportRuns = append(f.reportRuns, day)
	return nil
}

type fakeClientStore struct {
	dueByDay map[string][]domain.Client
	active   []domain.Client
}

func (f *fakeClientStore) ListDueOn(ctx context.Context, userID int64, day time.Time) ([]domain.Client, error) {
	return f.dueByDay[day.Format("2006-01-02")], nil
}

func (f *fakeClientStore) ListActiveByUser(ctx context.Context, userID int64) ([]domain.Client, error) {
	return f.active, nil
}

type dispatchCall struct {
	tplType domain.TemplateType
	count   int
}

type fakeDispatcher struct {
	calls []dispatchCall
	err   error
}

func (f *fakeDispatcher) SendReminders(ctx context.Context, user *domain.User, clients []domain.Client, tplType domain.TemplateType, now time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.calls = append(f.calls, dispatchCall{tplType: tplType, count: len(clients)})
	return len(clients), nil
}

type fakeChat struct {
	sent []string
	err  error
}

func (f *fakeChat) SendNotification(ctx context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestService(t *testing.T, settings *fakeSettingsStore, clients *fakeClientStore, disp *fakeDispatcher, chat *fakeChat) *Service {
	t.Helper()

	bridge := NewBridge(discard())
	bridge.Start(context.Background())
	t.Cleanup(bridge.Stop)

	return New(Config{
		Settings:    settings,
		Clients:     clients,
		Dispatcher:  disp,
		BuildReport: func(today time.Time, cs []domain.Client) string { return "report" },
		Chat:        chat,
		Bridge:      bridge,
		Location:    time.UTC,
		Logger:      discard(),
	})
}

func dueClient(id int64, day time.Time) domain.Client {
	return domain.Client{
		ID:          id,
		UserID:      1,
		Name:        "Maria",
		PhoneNumber: "11999998888",
		Status:      domain.ClientActive,
		DueDate:     day,
	}
}

func TestMaybeRunReminders_AllOffsets(t *testing.T) {
	now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	clients := &fakeClientStore{dueByDay: map[string][]domain.Client{
		"2025-03-07": {dueClient(1, today.AddDate(0, 0, 2))},  // +2 дня
		"2025-03-05": {dueClient(2, today)},                   // сегодня
		"2025-03-04": {dueClient(3, today.AddDate(0, 0, -1))}, // просрочен
	}}
	settings := &fakeSettingsStore{settings: domain.DefaultScheduleSettings(1)}
	disp := &fakeDispatcher{}
	svc := newTestService(t, settings, clients, disp, &fakeChat{})

	user := &domain.User{ID: 1, TelegramID: 100, IsActive: true}
	svc.maybeRunReminders(context.Background(), user, settings.settings, now, today)

	if len(disp.calls) != 3 {
		t.Fatalf("expected 3 dispatch calls, got %d", len(disp.calls))
	}
	wantTypes := []domain.TemplateType{
		domain.TemplateReminder2Days,
		domain.TemplateReminderDueDate,
		domain.TemplateReminderOverdue,
	}
	for i, want := range wantTypes {
		if disp.calls[i].tplType != want {
			t.Errorf("call %d: type = %s, want %s", i, disp.calls[i].tplType, want)
		}
	}

	// Маркер продвинут на сегодняшний день
	if len(settings.morningRuns) != 1 || !settings.morningRuns[0].Equal(today) {
		t.Errorf("marker must advance to %s, got %v", today, settings.morningRuns)
	}
}

func TestMaybeRunReminders_AutoSendDisabled(t *testing.T) {
	now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	s := domain.DefaultScheduleSettings(1)
	s.AutoSendEnabled = false
	settings := &fakeSettingsStore{settings: s}
	disp := &fakeDispatcher{}
	svc := newTestService(t, settings, &fakeClientStore{}, disp, &fakeChat{})

	user := &domain.User{ID: 1, IsActive: true}
	svc.maybeRunReminders(context.Background(), user, s, now, today)

	if len(disp.calls) != 0 {
		t.Error("auto_send disabled must suppress reminders")
	}
	if len(settings.morningRuns) != 0 {
		t.Error("marker must not advance when reminders are suppressed")
	}
}

func TestMaybeRunReminders_MarkerNotAdvancedOnError(t *testing.T) {
	now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	clients := &fakeClientStore{dueByDay: map[string][]domain.Client{
		"2025-03-05": {dueClient(1, today)},
	}}
	settings := &fakeSettingsStore{settings: domain.DefaultScheduleSettings(1)}
	disp := &fakeDispatcher{err: errors.New("gateway down")}
	svc := newTestService(t, settings, clients, disp, &fakeChat{})

	user := &domain.User{ID: 1, IsActive: true}
	svc.maybeRunReminders(context.Background(), user, settings.settings, now, today)

	// При ошибке маркер не двигается — следующая минута повторит попытку
	if len(settings.morningRuns) != 0 {
		t.Error("marker must not advance on dispatch error")
	}
}

func TestMaybeRunReport_AutoSendDoesNotGateReport(t *testing.T) {
	now := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	s := domain.DefaultScheduleSettings(1)
	s.AutoSendEnabled = false // отчёт флаг не затрагивает
	settings := &fakeSettingsStore{settings: s}
	chat := &fakeChat{}
	svc := newTestService(t, settings, &fakeClientStore{}, &fakeDispatcher{}, chat)

	user := &domain.User{ID: 1, TelegramID: 100, IsActive: true}
	svc.maybeRunReport(context.Background(), user, s, now, today)

	if len(chat.sent) != 1 {
		t.Fatalf("report must fire regardless of auto_send, sent = %d", len(chat.sent))
	}
	if len(settings.reportRuns) != 1 {
		t.Error("report marker must advance on success")
	}
}

func TestMaybeRunReport_MarkerNotAdvancedOnError(t *testing.T) {
	now := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	settings := &fakeSettingsStore{settings: domain.DefaultScheduleSettings(1)}
	chat := &fakeChat{err: errors.New("telegram down")}
	svc := newTestService(t, settings, &fakeClientStore{}, &fakeDispatcher{}, chat)

	user := &domain.User{ID: 1, TelegramID: 100, IsActive: true}
	svc.maybeRunReport(context.Background(), user, settings.settings, now, today)

	if len(settings.reportRuns) != 0 {
		t.Error("report marker must not advance on send error")
	}
}

func TestMaybeRunReport_EmptyReportNotSent(t *testing.T) {
	now := time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	settings := &fakeSettingsStore{settings: domain.DefaultScheduleSettings(1)}
	chat := &fakeChat{}

	bridge := NewBridge(discard())
	bridge.Start(context.Background())
	t.Cleanup(bridge.Stop)

	svc := New(Config{
		Settings:    settings,
		Clients:     &fakeClientStore{},
		Dispatcher:  &fakeDispatcher{},
		BuildReport: func(today time.Time, cs []domain.Client) string { return "" },
		Chat:        chat,
		Bridge:      bridge,
		Location:    time.UTC,
		Logger:      discard(),
	})

	user := &domain.User{ID: 1, TelegramID: 100, IsActive: true}
	svc.maybeRunReport(context.Background(), user, settings.settings, now, today)

	if len(chat.sent) != 0 {
		t.Error("empty report must not be sent")
	}
	// Пустой отчёт — штатный успех, маркер двигается
	if len(settings.reportRuns) != 1 {
		t.Error("marker must advance after an empty report")
	}
}
