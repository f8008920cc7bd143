package grammar

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grammar-proxy/api/internal/llm"
	"grammar-proxy/api/internal/metrics"
	"grammar-proxy/api/internal/util"
)

type stubClient struct {
	name  string
	delay time.Duration

	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []string
}

func (s *stubClient) Name() string     { return s.name }
func (s *stubClient) GetModel() string { return "stub-1" }

func (s *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", &llm.ProviderError{Provider: s.name, Err: ctx.Err()}
		}
	}
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if len(s.replies) == 0 {
		return "", nil
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return s.replies[len(s.replies)-1], nil
}

func (s *stubClient) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func newTestService(c llm.Client, opt Options) (*Service, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opt.Logger = logger
	if opt.Backoff == 0 {
		opt.Backoff = time.Millisecond
	}
	return NewService(&llm.Engines{OpenAI: c, Default: llm.GPT}, opt), hook
}

func TestServiceCorrect(t *testing.T) {
	c := &stubClient{name: llm.GPT, replies: []string{"```json\n" + wellFormed + "\n```"}}
	svc, _ := newTestService(c, Options{})

	before := testutil.ToFloat64(metrics.CorrectionsTotal.WithLabelValues(llm.GPT, metrics.OutcomeOK))
	res, err := svc.Correct(context.Background(), englishReq(t, "she go to school yesterday"), "")
	require.NoError(t, err)

	assert.Equal(t, "She went to school yesterday.", res.Corrected)
	assert.Equal(t, 1, c.calls())
	assert.Contains(t, c.prompts[0], `"she go to school yesterday"`)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CorrectionsTotal.WithLabelValues(llm.GPT, metrics.OutcomeOK)))
}

func TestServiceRetriesTransientErrors(t *testing.T) {
	c := &stubClient{
		name: llm.GPT,
		errs: []error{
			&llm.ProviderError{Provider: llm.GPT, StatusCode: http.StatusServiceUnavailable, Err: errors.New("overloaded")},
			&llm.ProviderError{Provider: llm.GPT, StatusCode: http.StatusTooManyRequests, Err: errors.New("slow down")},
		},
		replies: []string{"", "", wellFormed},
	}
	svc, _ := newTestService(c, Options{MaxRetries: 2})

	res, err := svc.Correct(context.Background(), englishReq(t, "she go to school yesterday"), "gpt")
	require.NoError(t, err)
	assert.Equal(t, "She went to school yesterday.", res.Corrected)
	assert.Equal(t, 3, c.calls())
}

func TestServiceRetriesExhausted(t *testing.T) {
	fail := &llm.ProviderError{Provider: llm.GPT, StatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}
	c := &stubClient{name: llm.GPT, errs: []error{fail, fail, fail, fail}}
	svc, _ := newTestService(c, Options{MaxRetries: 2})

	_, err := svc.Correct(context.Background(), englishReq(t, "she go to school yesterday"), "")
	var pe *llm.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadGateway, pe.StatusCode)
	assert.Equal(t, 3, c.calls())
}

func TestServiceDoesNotRetryClientErrors(t *testing.T) {
	c := &stubClient{name: llm.GPT, errs: []error{
		&llm.ProviderError{Provider: llm.GPT, StatusCode: http.StatusUnauthorized, Err: errors.New("bad key")},
	}}
	svc, _ := newTestService(c, Options{MaxRetries: 3})

	_, err := svc.Correct(context.Background(), englishReq(t, "she go to school yesterday"), "")
	var pe *llm.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, c.calls())
}

func TestServiceTimeout(t *testing.T) {
	c := &stubClient{name: llm.GPT, delay: time.Second, replies: []string{wellFormed}}
	svc, _ := newTestService(c, Options{Timeout: 20 * time.Millisecond, MaxRetries: 2})

	start := time.Now()
	_, err := svc.Correct(context.Background(), englishReq(t, "she go to school yesterday"), "")
	var te *TimeoutError
	require.True(t, errors.As(err, &te), "got %v", err)
	assert.Equal(t, llm.GPT, te.Provider)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 1, c.calls())
}

func TestServiceCallerCancelled(t *testing.T) {
	c := &stubClient{name: llm.GPT, delay: time.Second, replies: []string{wellFormed}}
	svc, hook := newTestService(c, Options{})

	cancelled := metrics.CorrectionsTotal.WithLabelValues(llm.GPT, metrics.OutcomeCancelled)
	failed := metrics.CorrectionsTotal.WithLabelValues(llm.GPT, metrics.OutcomeProviderError)
	beforeCancelled, beforeFailed := testutil.ToFloat64(cancelled), testutil.ToFloat64(failed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Correct(ctx, englishReq(t, "she go to school yesterday"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	var te *TimeoutError
	assert.False(t, errors.As(err, &te))

	assert.Equal(t, beforeCancelled+1, testutil.ToFloat64(cancelled))
	assert.Equal(t, beforeFailed, testutil.ToFloat64(failed))
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, e.Level, e.Message)
	}
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "request cancelled", hook.LastEntry().Message)
}

func TestServiceNotConfigured(t *testing.T) {
	svc := NewService(&llm.Engines{Default: llm.Gemini}, Options{})

	_, err := svc.Correct(context.Background(), Request{Sentence: "x", Language: English, Tone: Neutral}, "")
	var nc *llm.NotConfiguredError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, "GEMINI_API_KEY", nc.EnvVar)

	_, err = svc.Correct(context.Background(), Request{Sentence: "x", Language: English, Tone: Neutral}, "claude")
	var ue *llm.UnknownEngineError
	assert.True(t, errors.As(err, &ue))
}

func TestServiceParseErrorLogsRaw(t *testing.T) {
	raw := "I'm sorry, I can't help with that."
	c := &stubClient{name: llm.GPT, replies: []string{raw}}
	svc, hook := newTestService(c, Options{})

	ctx := util.WithRequestID(context.Background(), "req-42")
	_, err := svc.Correct(ctx, englishReq(t, "she go to school yesterday"), "")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, raw, entry.Data["raw"])
	assert.Equal(t, "req-42", entry.Data["request_id"])
	assert.Equal(t, "unparsable", entry.Data["kind"])
}

func TestServiceLanguageMismatch(t *testing.T) {
	c := &stubClient{name: llm.GPT, replies: []string{"not json"}}
	svc, _ := newTestService(c, Options{})

	before := testutil.ToFloat64(metrics.CorrectionsTotal.WithLabelValues(llm.GPT, metrics.OutcomeRejected))
	res, err := svc.Correct(context.Background(), englishReq(t, "Hola, ¿cómo estás hoy?"), "")
	require.NoError(t, err)
	assert.Equal(t, Rejection(English), res)
	assert.Equal(t, 1, c.calls())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CorrectionsTotal.WithLabelValues(llm.GPT, metrics.OutcomeRejected)))
}
