package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zerovacancy/zerovacancy/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeQueue struct {
	mu        sync.Mutex
	pending   []*Job
	sent      map[string]string
	failed    map[string]error
	recovered int
}

func newFakeQueue(jobs ...*Job) *fakeQueue {
	return &fakeQueue{pending: jobs, sent: map[string]string{}, failed: map[string]error{}}
}

func (q *fakeQueue) Dequeue(_ context.Context, batchSize int) ([]*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := min(batchSize, len(q.pending))
	out := q.pending[:n]
	q.pending = q.pending[n:]
	for _, j := range out {
		j.Attempts++
		j.Status = JobStatusProcessing
	}
	return out, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id, messageID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent[id] = messageID
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, err error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed[id] = err
	return nil
}

func (q *fakeQueue) RecoverStaleJobs(context.Context, time.Duration) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recovered++
	return 0, nil
}

type fakeSender struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.msgs = append(s.msgs, msg)
	return "msg-" + msg.To, nil
}

func testConfig() *Config {
	return NewConfig(&config.Config{Email: config.EmailConfig{
		Enabled:          true,
		FromEmail:        "hello@zerovacancy.ai",
		FromName:         "ZeroVacancy",
		MaxRetries:       3,
		RetryDelaySec:    60,
		WorkerIntervalMs: 10,
		WorkerBatchSize:  2,
	}})
}

func mustTemplates(t *testing.T) *Templates {
	t.Helper()
	tmpl, err := NewTemplates(discardLogger())
	require.NoError(t, err)
	return tmpl
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig(&config.Config{})
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.False(t, cfg.IsConfigured())

	cfg.FromEmail = "a@b.co"
	assert.Equal(t, "a@b.co", cfg.From())
	cfg.FromName = "ZV"
	assert.Equal(t, "ZV <a@b.co>", cfg.From())
}

func TestRetryDelay(t *testing.T) {
	base := time.Minute
	assert.Equal(t, time.Minute, RetryDelay(base, 0))
	assert.Equal(t, time.Minute, RetryDelay(base, 1))
	assert.Equal(t, 4*time.Minute, RetryDelay(base, 2))
	assert.Equal(t, 9*time.Minute, RetryDelay(base, 3))
	assert.Equal(t, time.Hour, RetryDelay(base, 20))
}

func TestTruncateError(t *testing.T) {
	assert.Equal(t, "short", truncateError("short"))
	assert.Len(t, truncateError(strings.Repeat("x", 5000)), maxErrorLength)
}

func TestTemplates_WaitlistWelcome(t *testing.T) {
	tmpl := mustTemplates(t)
	require.True(t, tmpl.Has("waitlist-welcome"))
	assert.Contains(t, tmpl.Names(), "waitlist-welcome")

	out, err := tmpl.Render("waitlist-welcome", TemplateContext{
		"title":    "Welcome",
		"siteName": "ZeroVacancy",
		"siteUrl":  "https://zerovacancy.ai",
		"email":    "jo@example.com",
		"ctaUrl":   "https://zerovacancy.ai",
	}, DefaultLayout)
	require.NoError(t, err)

	assert.Contains(t, out.HTML, "<!DOCTYPE html>")
	assert.Contains(t, out.HTML, "<title>Welcome</title>")
	assert.Contains(t, out.HTML, "jo@example.com")
	assert.Contains(t, out.HTML, "Visit ZeroVacancy")
	assert.Contains(t, out.HTML, "joined the ZeroVacancy waitlist", "footer partial is rendered")
	assert.Contains(t, out.Text, "Welcome")
}

func TestTemplates_EscapesData(t *testing.T) {
	tmpl := mustTemplates(t)

	out, err := tmpl.Render("waitlist-welcome", TemplateContext{"email": "<script>x</script>"}, "")
	require.NoError(t, err)
	assert.NotContains(t, out.HTML, "<script>")
	assert.Contains(t, out.HTML, "&lt;script&gt;")
}

func TestTemplates_UnknownTemplate(t *testing.T) {
	_, err := mustTemplates(t).Render("nope", nil, DefaultLayout)
	assert.ErrorContains(t, err, "template not found")
}

func TestTemplates_UnknownLayoutLeavesBodyUnwrapped(t *testing.T) {
	out, err := mustTemplates(t).Render("waitlist-welcome", TemplateContext{"siteName": "ZV"}, "missing")
	require.NoError(t, err)
	assert.NotContains(t, out.HTML, "<!DOCTYPE html>")
	assert.Contains(t, out.HTML, "ZV waitlist")
}

func TestLoadTemplates_ParseError(t *testing.T) {
	fsys := fstest.MapFS{"broken.hbs": {Data: []byte("{{#if}")}}
	_, err := LoadTemplates(fsys, discardLogger())
	assert.ErrorContains(t, err, "broken")
}

func TestLoadTemplates_NoSubdirectories(t *testing.T) {
	fsys := fstest.MapFS{"hi.hbs": {Data: []byte("hi {{name}}")}}
	tmpl, err := LoadTemplates(fsys, discardLogger())
	require.NoError(t, err)

	out, err := tmpl.Render("hi", TemplateContext{"name": "jo"}, DefaultLayout)
	require.NoError(t, err)
	assert.Equal(t, "hi jo", out.HTML)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "custom", PlainText(TemplateContext{"plainText": "custom", "title": "x"}))
	assert.Equal(t, "Hi\n\nBody\n\nLink: https://x.y",
		PlainText(TemplateContext{"title": "Hi", "message": "Body", "ctaUrl": "https://x.y"}))
	assert.Empty(t, PlainText(nil))
}

func TestWorker_ProcessBatchSendsAndMarks(t *testing.T) {
	name := "Jo"
	q := newFakeQueue(
		&Job{ID: "1", TemplateName: "waitlist-welcome", ToEmail: "jo@example.com", ToName: &name, Subject: "Welcome",
			TemplateData: JSON{"siteName": "ZeroVacancy", "email": "jo@example.com"}},
		&Job{ID: "2", TemplateName: "no-such-template", ToEmail: "al@example.com", Subject: "Hi",
			TemplateData: JSON{"message": "plain body"}},
	)
	s := &fakeSender{}
	w := NewWorker(q, s, mustTemplates(t), testConfig(), discardLogger())

	n, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, map[string]string{"1": "msg-jo@example.com", "2": "msg-al@example.com"}, q.sent)
	require.Len(t, s.msgs, 2)
	assert.Equal(t, "Jo", s.msgs[0].ToName)
	assert.Contains(t, s.msgs[0].HTML, "Thanks for joining the ZeroVacancy waitlist, Jo.")
	assert.Contains(t, s.msgs[1].HTML, "plain body", "missing template falls back to a generic body")
	assert.Contains(t, s.msgs[1].Text, "plain body")
}

func TestWorker_SendFailureMarksFailed(t *testing.T) {
	q := newFakeQueue(&Job{ID: "1", TemplateName: "waitlist-welcome", ToEmail: "jo@example.com"})
	s := &fakeSender{err: errors.New("provider down")}
	w := NewWorker(q, s, mustTemplates(t), testConfig(), discardLogger())

	n, err := w.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, q.sent)
	assert.EqualError(t, q.failed["1"], "provider down")
}

func TestWorker_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	q := newFakeQueue(&Job{ID: "1", TemplateName: "waitlist-welcome", ToEmail: "jo@example.com"})
	s := &fakeSender{}
	w := NewWorker(q, s, mustTemplates(t), testConfig(), discardLogger())

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()), "second start is a no-op")
	assert.True(t, w.IsRunning())

	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.sent) == 1
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
	require.NoError(t, w.Stop(ctx))
	assert.False(t, w.IsRunning())
	assert.Equal(t, 1, q.recovered)
}

func TestWorker_DisabledDoesNotStart(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	w := NewWorker(newFakeQueue(), &fakeSender{}, mustTemplates(t), cfg, discardLogger())

	require.NoError(t, w.Start(context.Background()))
	assert.False(t, w.IsRunning())
}

func TestNewSender_FallsBackToLogSender(t *testing.T) {
	s := NewSender(testConfig(), discardLogger())
	_, ok := s.(*logSender)
	require.True(t, ok)

	id, err := s.Send(context.Background(), Message{To: "jo@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "noop-jo@example.com", id)
}

func TestMailgunSender_Send(t *testing.T) {
	var (
		gotPath    string
		gotSubject string
		gotTo      string
		gotFrom    string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSubject = r.FormValue("subject")
		gotTo = r.FormValue("to")
		gotFrom = r.FormValue("from")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"<20260101.1@mg.example.com>","message":"Queued. Thank you."}`)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MailgunDomain = "mg.example.com"
	cfg.MailgunAPIKey = "key-test"
	cfg.MailgunAPIBase = srv.URL + "/v3"

	s := NewSender(cfg, discardLogger())
	require.IsType(t, &MailgunSender{}, s)

	id, err := s.Send(context.Background(), Message{
		To: "jo@example.com", ToName: "Jo", Subject: "Welcome", Text: "hi", HTML: "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "<20260101.1@mg.example.com>", id)
	assert.Equal(t, "/v3/mg.example.com/messages", gotPath)
	assert.Equal(t, "Welcome", gotSubject)
	assert.Equal(t, "Jo <jo@example.com>", gotTo)
	assert.Equal(t, "ZeroVacancy <hello@zerovacancy.ai>", gotFrom)
}

func TestMailgunSender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"forbidden"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MailgunDomain = "mg.example.com"
	cfg.MailgunAPIKey = "key-test"
	cfg.MailgunAPIBase = srv.URL + "/v3"

	_, err := NewMailgunSender(cfg, discardLogger()).Send(context.Background(), Message{To: "jo@example.com", Text: "hi"})
	assert.ErrorContains(t, err, "mailgun send")
}

func TestMailgunSender_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing domain", func(c *Config) { c.MailgunDomain = "" }, "MAILGUN_DOMAIN is required"},
		{"missing key", func(c *Config) { c.MailgunAPIKey = "" }, "MAILGUN_API_KEY is required"},
		{"missing from", func(c *Config) { c.FromEmail = "" }, "EMAIL_FROM_ADDRESS is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.MailgunDomain = "mg.example.com"
			cfg.MailgunAPIKey = "key-test"
			tt.mutate(cfg)

			_, err := NewMailgunSender(cfg, discardLogger()).Send(context.Background(), Message{To: "jo@example.com"})
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
