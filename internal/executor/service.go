package executor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/danmuck/colonies/internal/observability"
	"github.com/danmuck/colonies/pkg/client"
	"github.com/danmuck/colonies/pkg/core"
	"github.com/danmuck/colonies/pkg/crypto"
	"github.com/danmuck/colonies/pkg/rpc"
)

var (
	ErrColonyNameRequired   = errors.New("executor: colony name required")
	ErrExecutorNameRequired = errors.New("executor: executor name required")
	ErrPrvKeyRequired       = errors.New("executor: private key required")
	ErrNoHandlers           = errors.New("executor: no handlers registered")
	ErrApproveNeedsColony   = errors.New("executor: self approve requires the colony key")
)

// ServiceConfig configures one executor process.
type ServiceConfig struct {
	ColonyName   string
	ExecutorName string
	ExecutorType string
	LocationName string
	PrvKey       string
	// ColonyPrvKey registers the executor when set; otherwise it must
	// already exist on the server.
	ColonyPrvKey  string
	SelfApprove   bool
	Workers       int
	AssignTimeout time.Duration
	// PollRate caps assign requests per second across all workers.
	PollRate float64
	Backoff  rpc.BackoffConfig
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ExecutorType:  "cli",
		Workers:       1,
		AssignTimeout: 10 * time.Second,
		PollRate:      5,
		Backoff:       rpc.DefaultConfig().Backoff,
	}
}

// Stats counts processes closed by this service.
type Stats struct {
	Succeeded int64
	Failed    int64
}

// Service registers an executor and runs its assign loops.
type Service struct {
	client     *client.Client
	cfg        ServiceConfig
	registry   *Registry
	executorID string
	limiter    *rate.Limiter

	succeeded atomic.Int64
	failed    atomic.Int64
}

func NewService(c *client.Client, cfg ServiceConfig, reg *Registry) (*Service, error) {
	cfg = withDefaults(cfg)
	if strings.TrimSpace(cfg.ColonyName) == "" {
		return nil, ErrColonyNameRequired
	}
	if strings.TrimSpace(cfg.ExecutorName) == "" {
		return nil, ErrExecutorNameRequired
	}
	if strings.TrimSpace(cfg.PrvKey) == "" {
		return nil, ErrPrvKeyRequired
	}
	if cfg.SelfApprove && strings.TrimSpace(cfg.ColonyPrvKey) == "" {
		return nil, ErrApproveNeedsColony
	}
	if reg == nil || reg.Len() == 0 {
		return nil, ErrNoHandlers
	}
	executorID, err := crypto.GenerateID(cfg.PrvKey)
	if err != nil {
		return nil, fmt.Errorf("executor key: %w", err)
	}
	return &Service{
		client:     c,
		cfg:        cfg,
		registry:   reg,
		executorID: executorID,
		limiter:    rate.NewLimiter(rate.Limit(cfg.PollRate), cfg.Workers),
	}, nil
}

func withDefaults(cfg ServiceConfig) ServiceConfig {
	def := DefaultServiceConfig()
	if strings.TrimSpace(cfg.ExecutorType) == "" {
		cfg.ExecutorType = def.ExecutorType
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.AssignTimeout <= 0 {
		cfg.AssignTimeout = def.AssignTimeout
	}
	if cfg.PollRate <= 0 {
		cfg.PollRate = def.PollRate
	}
	if cfg.Backoff.InitialDelay <= 0 {
		cfg.Backoff = def.Backoff
	}
	return cfg
}

func (s *Service) ExecutorID() string {
	return s.executorID
}

func (s *Service) Stats() Stats {
	return Stats{Succeeded: s.succeeded.Load(), Failed: s.failed.Load()}
}

// Run registers the executor and serves until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Bootstrap(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Bootstrap registers, optionally approves, and publishes one function per
// handler.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.cfg.ColonyPrvKey != "" {
		if err := s.register(ctx); err != nil {
			return err
		}
	}
	if s.cfg.SelfApprove {
		if err := s.client.ApproveExecutor(ctx, s.cfg.ColonyName, s.cfg.ExecutorName, s.cfg.ColonyPrvKey); err != nil {
			return fmt.Errorf("approve executor: %w", err)
		}
	}
	for _, meta := range s.registry.ListMetadata() {
		fn := core.NewFunction(s.cfg.ExecutorName, s.cfg.ExecutorType, s.cfg.ColonyName, meta.FuncName)
		if _, err := s.client.AddFunction(ctx, fn, s.cfg.PrvKey); err != nil {
			if !rpc.IsApplicationError(err) {
				return fmt.Errorf("add function %s: %w", meta.FuncName, err)
			}
			log.Warn().Err(err).Str("funcname", meta.FuncName).Msg("executor.Service.Bootstrap function not added")
		}
	}
	log.Info().
		Str("executor", s.cfg.ExecutorName).
		Str("executor_id", s.executorID).
		Str("colony", s.cfg.ColonyName).
		Int("functions", s.registry.Len()).
		Msg("executor.Service.Bootstrap ready")
	return nil
}

// register adds the executor; an executor already known under the same
// id is reused.
func (s *Service) register(ctx context.Context) error {
	executor := core.NewExecutor(s.cfg.ExecutorName, s.executorID, s.cfg.ExecutorType, s.cfg.ColonyName)
	executor.LocationName = s.cfg.LocationName
	_, err := s.client.AddExecutor(ctx, executor, s.cfg.ColonyPrvKey)
	if err == nil {
		return nil
	}
	if !rpc.IsApplicationError(err) {
		return fmt.Errorf("add executor: %w", err)
	}
	existing, getErr := s.client.GetExecutor(ctx, s.cfg.ColonyName, s.cfg.ExecutorName, s.cfg.PrvKey)
	if getErr != nil || existing.ExecutorID != s.executorID {
		return fmt.Errorf("add executor: %w", err)
	}
	log.Info().Str("executor", s.cfg.ExecutorName).Msg("executor.Service.register reusing existing executor")
	return nil
}

// Serve runs cfg.Workers assign loops until ctx is canceled.
func (s *Service) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.Workers; i++ {
		g.Go(func() error {
			return s.assignLoop(gctx, i)
		})
	}
	err := g.Wait()
	log.Info().
		Int64("succeeded", s.succeeded.Load()).
		Int64("failed", s.failed.Load()).
		Msg("executor.Service.Serve shutdown")
	return err
}

func (s *Service) assignLoop(ctx context.Context, worker int) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)))
	attempt := 0
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil
		}
		proc, err := s.client.Assign(ctx, s.cfg.ColonyName, s.cfg.AssignTimeout, s.cfg.PrvKey)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if rpc.IsApplicationError(err) {
				attempt = 0
				log.Debug().Int("worker", worker).Err(err).Msg("executor.Service.assignLoop nothing assigned")
				continue
			}
			attempt++
			log.Warn().Int("worker", worker).Int("attempt", attempt).Err(err).Msg("executor.Service.assignLoop assign failed")
			if err := rpc.SleepBackoff(ctx, s.cfg.Backoff, attempt, rng); err != nil {
				return nil
			}
			continue
		}
		attempt = 0
		s.execute(ctx, proc)
	}
}

// execute runs proc to completion and closes it. Closing outlives ctx so a
// shutdown does not strand a finished process.
func (s *Service) execute(ctx context.Context, proc core.Process) {
	funcName := proc.Spec.FuncName
	closeCtx := context.WithoutCancel(ctx)
	logger := log.With().Str("process_id", proc.ProcessID).Str("funcname", funcName).Logger()

	task := Task{
		Process: proc,
		Log: func(message string) {
			if err := s.client.AddLog(closeCtx, proc.ProcessID, message, s.cfg.PrvKey); err != nil {
				logger.Debug().Err(err).Msg("executor.Service.execute add log")
			}
		},
	}

	fn, ok := s.registry.Resolve(funcName)
	if !ok {
		s.fail(closeCtx, proc, fmt.Errorf("unsupported function %q", funcName))
		return
	}

	runCtx := ctx
	if proc.Spec.MaxExecTime > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(proc.Spec.MaxExecTime)*time.Second)
		defer cancel()
	}

	start := time.Now()
	out, err := runHandler(runCtx, fn, task)
	if err != nil {
		s.fail(closeCtx, proc, err)
		return
	}
	if err := s.client.CloseWithOutput(closeCtx, proc.ProcessID, out, s.cfg.PrvKey); err != nil {
		logger.Warn().Err(err).Msg("executor.Service.execute close failed")
		return
	}
	s.succeeded.Add(1)
	observability.RecordExecutorProcess(funcName, true)
	logger.Info().Dur("duration", time.Since(start)).Msg("executor.Service.execute succeeded")
}

func (s *Service) fail(ctx context.Context, proc core.Process, cause error) {
	logger := log.With().Str("process_id", proc.ProcessID).Str("funcname", proc.Spec.FuncName).Logger()
	if err := s.client.Fail(ctx, proc.ProcessID, []string{cause.Error()}, s.cfg.PrvKey); err != nil {
		logger.Warn().Err(err).Msg("executor.Service.fail close failed")
		return
	}
	s.failed.Add(1)
	observability.RecordExecutorProcess(proc.Spec.FuncName, false)
	logger.Info().Err(cause).Msg("executor.Service.execute failed")
}

func runHandler(ctx context.Context, fn HandlerFunc, task Task) (out []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return fn(ctx, task)
}
