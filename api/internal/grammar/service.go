package grammar

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"grammar-proxy/api/internal/llm"
	"grammar-proxy/api/internal/metrics"
	"grammar-proxy/api/internal/util"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultBackoff = 200 * time.Millisecond
)

type Options struct {
	// Timeout bounds the whole provider exchange, retries included.
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	Prompter   *Prompter
	Logger     logrus.FieldLogger
}

// Service runs one correction: prompt, provider call, normalization.
type Service struct {
	engines    *llm.Engines
	prompter   *Prompter
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	log        logrus.FieldLogger
}

func NewService(engines *llm.Engines, opt Options) *Service {
	s := &Service{
		engines:    engines,
		prompter:   opt.Prompter,
		timeout:    opt.Timeout,
		maxRetries: opt.MaxRetries,
		backoff:    opt.Backoff,
		log:        opt.Logger,
	}
	if s.prompter == nil {
		s.prompter = MustPrompter()
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.maxRetries < 0 {
		s.maxRetries = 0
	}
	if s.backoff <= 0 {
		s.backoff = DefaultBackoff
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

func (s *Service) Engines() *llm.Engines { return s.engines }

// Correct resolves llmName (empty means the default provider), asks it to
// correct req and normalizes the reply.
func (s *Service) Correct(ctx context.Context, req Request, llmName string) (Result, error) {
	log := s.log.WithField("request_id", util.RequestID(ctx))

	engine, err := s.engines.GetEngine(llmName)
	if err != nil {
		var nc *llm.NotConfiguredError
		if errors.As(err, &nc) {
			metrics.CorrectionsTotal.WithLabelValues(nc.Engine, metrics.OutcomeConfigError).Inc()
		}
		return Result{}, err
	}
	name := engine.Name()
	log = log.WithFields(logrus.Fields{"provider": name, "model": engine.GetModel()})

	prompt, err := s.prompter.Build(req)
	if err != nil {
		return Result{}, err
	}

	raw, err := s.complete(ctx, engine, prompt)
	if err != nil {
		var te *TimeoutError
		switch {
		case errors.As(err, &te):
			metrics.CorrectionsTotal.WithLabelValues(name, metrics.OutcomeTimeout).Inc()
			log.WithError(err).Warn("provider timed out")
		case errors.Is(ctx.Err(), context.Canceled):
			// the caller went away; not a provider fault
			metrics.CorrectionsTotal.WithLabelValues(name, metrics.OutcomeCancelled).Inc()
			log.WithError(err).Info("request cancelled")
		default:
			metrics.CorrectionsTotal.WithLabelValues(name, metrics.OutcomeProviderError).Inc()
			log.WithError(err).Error("provider call failed")
		}
		return Result{}, err
	}

	res, err := Normalize(raw, req)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			log.WithFields(logrus.Fields{
				"kind": pe.Kind.String(),
				"raw":  util.Truncate(pe.Raw, 2000),
			}).Warn("invalid AI response")
		}
		metrics.CorrectionsTotal.WithLabelValues(name, metrics.OutcomeParseError).Inc()
		return Result{}, err
	}

	if res.Rejected() {
		metrics.CorrectionsTotal.WithLabelValues(name, metrics.OutcomeRejected).Inc()
		log.WithField("language", req.Language).Info("sentence rejected: language mismatch")
	} else {
		metrics.CorrectionsTotal.WithLabelValues(name, metrics.OutcomeOK).Inc()
	}
	return res, nil
}

// complete is one logical provider call. Transient failures are retried with
// exponential backoff inside the same deadline.
func (s *Service) complete(ctx context.Context, engine llm.Client, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.ProviderDuration.WithLabelValues(engine.Name()).Observe(time.Since(start).Seconds())
	}()

	backoff := retry.WithMaxRetries(uint64(s.maxRetries), retry.NewExponential(s.backoff))

	var raw string
	attempt := 0
	err := retry.Do(cctx, backoff, func(ctx context.Context) error {
		attempt++
		out, err := engine.Complete(ctx, prompt)
		if err != nil {
			if llm.IsRetryable(err) {
				s.log.WithFields(logrus.Fields{
					"request_id": util.RequestID(ctx),
					"provider":   engine.Name(),
					"attempt":    attempt,
				}).WithError(err).Debug("retrying provider call")
				return retry.RetryableError(err)
			}
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		// the parent context being done means the caller went away, not a timeout
		if ctx.Err() == nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded)) {
			return "", &TimeoutError{Provider: engine.Name(), After: s.timeout, Err: err}
		}
		return "", err
	}
	return raw, nil
}
