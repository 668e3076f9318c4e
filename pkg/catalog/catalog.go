// Package catalog evaluates skills one at a time or as a concurrent batch.
// Each skill's evaluation is independent: it touches only its own files and
// its own slice of the shared cache keyspace, so a catalog scan fans out
// across a bounded worker pool while one failed skill never aborts its
// siblings.
package catalog

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/jingkaihe/skillaudit/pkg/cache"
	"github.com/jingkaihe/skillaudit/pkg/evaluator"
	"github.com/jingkaihe/skillaudit/pkg/logger"
	"github.com/jingkaihe/skillaudit/pkg/skill"
	"github.com/jingkaihe/skillaudit/pkg/telemetry"
	"github.com/jingkaihe/skillaudit/pkg/types/audit"
)

// Runner evaluates skills using a shared registry and cache
type Runner struct {
	discovery   *skill.Discovery
	registry    *evaluator.Registry
	cache       *cache.Manager
	store       *cache.ResultStore
	concurrency int
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithConcurrency bounds the batch worker pool
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithResultStore enables on-disk persistence of evaluation results
func WithResultStore(store *cache.ResultStore) RunnerOption {
	return func(r *Runner) { r.store = store }
}

// NewRunner creates a Runner over a validated registry
func NewRunner(discovery *skill.Discovery, registry *evaluator.Registry, cm *cache.Manager, opts ...RunnerOption) *Runner {
	r := &Runner{
		discovery:   discovery,
		registry:    registry,
		cache:       cm,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EvaluateSkill evaluates one skill directory, memoizing the result by the
// directory's aggregate modification signature: re-evaluating an unchanged
// skill is a cache hit and returns the identical result.
func (r *Runner) EvaluateSkill(ctx context.Context, dir string) (*audit.EvaluationResult, error) {
	sk, err := r.discovery.Load(dir)
	if err != nil {
		return nil, err
	}

	signature, err := cache.DirSignature(sk.Directory)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute skill signature")
	}

	if r.store != nil {
		if cached, err := r.store.Get(ctx, sk.Directory, signature); err == nil && cached != nil {
			return cached, nil
		}
	}

	var result *audit.EvaluationResult
	err = telemetry.WithSpan(ctx, "catalog.evaluate_skill", func(ctx context.Context) error {
		payload, err := r.cache.GetOrLoadKeyed(sk.Directory, signature, func() (any, error) {
			return r.registry.Evaluate(ctx, sk), nil
		})
		if err != nil {
			return err
		}
		result = payload.(*audit.EvaluationResult)
		return nil
	}, attribute.String("skill.path", sk.Directory))
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.store.Put(ctx, signature, result); err != nil {
			logger.G(ctx).WithError(err).Warn("failed to persist evaluation result")
		}
	}
	return result, nil
}

// Run discovers and evaluates every skill under the runner's catalog
// directories. Per-skill input errors are accumulated and returned
// alongside the results of the skills that did evaluate; only a completely
// unreadable catalog is a hard error.
func (r *Runner) Run(ctx context.Context) ([]*audit.EvaluationResult, error) {
	skills, err := r.discovery.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	results := make([]*audit.EvaluationResult, len(skills))
	var (
		mu   sync.Mutex
		errs *multierror.Error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, sk := range skills {
		g.Go(func() error {
			result, err := r.EvaluateSkill(gctx, sk.Directory)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, errors.Wrapf(err, "skill %s", sk.Directory))
				mu.Unlock()
				return nil // sibling evaluations continue
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	// Compact out the slots of skills that failed to evaluate
	out := results[:0]
	for _, result := range results {
		if result != nil {
			out = append(out, result)
		}
	}
	return out, errs.ErrorOrNil()
}
