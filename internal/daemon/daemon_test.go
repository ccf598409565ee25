package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/internal/rotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"gopkg.in/telebot.v3"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNotifier struct {
	mu        sync.Mutex
	err       error
	reminders []Reminder
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Notify(ctx context.Context, r Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.reminders = append(n.reminders, r)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reminders)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func mustConfig(t *testing.T, start, pattern string) rotation.Config {
	t.Helper()
	cfg, err := rotation.ParseConfig(start, pattern)
	require.NoError(t, err)
	return cfg
}

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
}

func newTestDaemon(t *testing.T, cfg rotation.Config, clk *clock, notifiers ...Notifier) *Daemon {
	t.Helper()
	d, err := New(cfg, Options{
		Location:  time.UTC,
		Notifiers: notifiers,
		Now:       clk.Now,
	}, zap.NewNop())
	require.NoError(t, err)
	return d
}

func TestReminderFor(t *testing.T) {
	fourteen := mustConfig(t, "2024-01-01", "14/14")

	tests := []struct {
		name     string
		cfg      rotation.Config
		today    time.Time
		wantKind ReminderKind
		wantText string
	}{
		{"hitch start", fourteen, at(time.December, 31, 18).AddDate(-1, 0, 0), ReminderHitchStart, "Hitch starts tomorrow (Mon 1 Jan): 14 days on."},
		{"mid hitch", fourteen, at(time.January, 5, 18), ReminderNone, ""},
		{"crossover", fourteen, at(time.January, 13, 18), ReminderCrossover, "Crossover tomorrow (Sun 14 Jan): last day of the hitch."},
		{"travel home", fourteen, at(time.January, 14, 18), ReminderTravel, "Tomorrow (Mon 15 Jan) is a travel day: heading home."},
		{"at home", fourteen, at(time.January, 20, 18), ReminderNone, ""},
		{"travel out", fourteen, at(time.January, 27, 18), ReminderTravel, "Tomorrow (Sun 28 Jan) is a travel day: heading offshore."},
		{"single off day", mustConfig(t, "2024-01-01", "3/1"), at(time.January, 3, 18), ReminderTravel, "Tomorrow (Thu 4 Jan) is a travel day: home and straight back out."},
		{"before anchor", fourteen, at(time.January, 1, 18).AddDate(0, 0, -5), ReminderNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, due := ReminderFor(tt.cfg, tt.today)
			assert.Equal(t, tt.wantKind != ReminderNone, due)
			assert.Equal(t, tt.wantKind, r.Kind)
			assert.Equal(t, tt.wantText, r.Text)
		})
	}
}

func TestRunOnce_OncePerDay(t *testing.T) {
	clk := &clock{now: at(time.January, 13, 18)}
	n := &recordingNotifier{}
	d := newTestDaemon(t, mustConfig(t, "2024-01-01", "14/14"), clk, n)
	ctx := context.Background()

	sent, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = d.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, 1, n.count())

	clk.Set(at(time.January, 14, 18))
	sent, err = d.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, sent)
	require.Equal(t, 2, n.count())
	assert.Equal(t, ReminderTravel, n.reminders[1].Kind)
	assert.Equal(t, "2024-01-14", d.GetStatus().LastRunDate)
}

func TestRunOnce_ConcurrentCallsSendOnce(t *testing.T) {
	clk := &clock{now: at(time.January, 13, 18)}
	n := &recordingNotifier{}
	d := newTestDaemon(t, mustConfig(t, "2024-01-01", "14/14"), clk, n)

	var (
		wg   sync.WaitGroup
		sent = make(chan bool, 8)
	)
	for i := 0; i < cap(sent); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := d.RunOnce(context.Background())
			assert.NoError(t, err)
			sent <- ok
		}()
	}
	wg.Wait()
	close(sent)

	var sends int
	for ok := range sent {
		if ok {
			sends++
		}
	}
	assert.Equal(t, 1, sends)
	assert.Equal(t, 1, n.count())
}

func TestRunOnce_NothingDue(t *testing.T) {
	clk := &clock{now: at(time.January, 20, 18)}
	n := &recordingNotifier{}
	d := newTestDaemon(t, mustConfig(t, "2024-01-01", "14/14"), clk, n)

	sent, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Zero(t, n.count())
	assert.Equal(t, "2024-01-20", d.GetStatus().LastRunDate)
}

func TestRunOnce_FailedDeliveryIsRetried(t *testing.T) {
	clk := &clock{now: at(time.January, 13, 18)}
	n := &recordingNotifier{err: errors.New("network down")}
	d := newTestDaemon(t, mustConfig(t, "2024-01-01", "14/14"), clk, n)
	ctx := context.Background()

	_, err := d.RunOnce(ctx)
	assert.ErrorContains(t, err, "network down")
	assert.Empty(t, d.GetStatus().LastRunDate)

	n.mu.Lock()
	n.err = nil
	n.mu.Unlock()

	sent, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestRunOnce_PartialFailureCountsAsSent(t *testing.T) {
	clk := &clock{now: at(time.January, 13, 18)}
	ok := &recordingNotifier{}
	broken := &recordingNotifier{err: errors.New("blocked")}
	d := newTestDaemon(t, mustConfig(t, "2024-01-01", "14/14"), clk, ok, broken)

	sent, err := d.RunOnce(context.Background())
	assert.True(t, sent)
	assert.Error(t, err)
	assert.Equal(t, 1, ok.count())
	assert.Equal(t, "2024-01-13", d.GetStatus().LastRunDate)
}

func TestSetConfig_ResetsDailyGuard(t *testing.T) {
	clk := &clock{now: at(time.January, 20, 18)}
	n := &recordingNotifier{}
	d := newTestDaemon(t, mustConfig(t, "2024-01-01", "14/14"), clk, n)
	ctx := context.Background()

	sent, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, sent)

	d.SetConfig(mustConfig(t, "2024-01-01", "14/14"))
	assert.Equal(t, "2024-01-20", d.GetStatus().LastRunDate, "same rotation keeps the guard")

	// Under 3/2 from Jan 1, Jan 21 is dayInCycle 0 again
	d.SetConfig(mustConfig(t, "2024-01-01", "3/2"))
	sent, err = d.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, ReminderHitchStart, n.reminders[0].Kind)
}

func TestGetStatus_NextRun(t *testing.T) {
	clk := &clock{now: at(time.January, 13, 19)}
	d := newTestDaemon(t, mustConfig(t, "2024-01-01", "14/14"), clk, &recordingNotifier{})

	st := d.GetStatus()
	assert.True(t, st.NextRun.Equal(at(time.January, 14, 18)), "got %v", st.NextRun)
	assert.Equal(t, DefaultCronSpec, st.CronSpec)
	assert.Equal(t, "14/14 from 2024-01-01", st.Schedule)
}

func TestMissedToday(t *testing.T) {
	clk := &clock{now: at(time.January, 13, 17)}
	d := newTestDaemon(t, mustConfig(t, "2024-01-01", "14/14"), clk, &recordingNotifier{})
	assert.False(t, d.missedToday())

	clk.Set(at(time.January, 13, 19))
	assert.True(t, d.missedToday())
}

func TestNew_InvalidCronSpec(t *testing.T) {
	_, err := New(mustConfig(t, "2024-01-01", "14/14"), Options{CronSpec: "every evening"}, zap.NewNop())
	assert.Error(t, err)
}

type fakeBot struct {
	started chan struct{}
	stop    chan struct{}
}

func newFakeBot() *fakeBot {
	return &fakeBot{started: make(chan struct{}), stop: make(chan struct{})}
}

func (b *fakeBot) Start() {
	close(b.started)
	<-b.stop
}

func (b *fakeBot) Stop() {
	<-b.started
	close(b.stop)
}

func TestRun_CatchesUpAndStops(t *testing.T) {
	clk := &clock{now: at(time.January, 13, 19)}
	n := &recordingNotifier{}
	bot := newFakeBot()
	d, err := New(mustConfig(t, "2024-01-01", "14/14"), Options{
		Location:  time.UTC,
		Notifiers: []Notifier{n},
		Bot:       bot,
		Now:       clk.Now,
	}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	<-bot.started
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.Equal(t, 1, n.count(), "missed check runs on start")
}

func TestDayAndMonthText(t *testing.T) {
	clk := &clock{now: at(time.January, 14, 9)}
	d := newTestDaemon(t, mustConfig(t, "2024-01-01", "14/14"), clk, &recordingNotifier{})

	assert.Equal(t, "Sun 2024-01-14  on-duty (day 14 of cycle), crossover day", d.DayText(0))
	assert.Equal(t, "Mon 2024-01-15  transit (day 15 of cycle)", d.DayText(1))

	month := d.MonthText()
	assert.Contains(t, month, "January 2024 (14/14 from 2024-01-01)")
	assert.Contains(t, month, "hitches starting: 1 29")
}

type fakeSender struct {
	to   telebot.Recipient
	what interface{}
}

func (s *fakeSender) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	s.to, s.what = to, what
	return &telebot.Message{}, nil
}

func TestTelegramNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := &TelegramNotifier{bot: sender, chatID: 42}

	require.NoError(t, n.Notify(context.Background(), Reminder{Text: "Hitch starts tomorrow"}))
	assert.Equal(t, "42", sender.to.Recipient())
	assert.Equal(t, "Hitch starts tomorrow", sender.what)
}
