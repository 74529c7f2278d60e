package pipeline

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/rulegraph/pkg/digits"
	"github.com/matzehuels/rulegraph/pkg/errors"
	"github.com/matzehuels/rulegraph/pkg/markov"
)

// SweepRequest names a contiguous range of rules to classify.
type SweepRequest struct {
	States int `json:"states"`
	From   int `json:"from"`
	To     int `json:"to"` // inclusive
}

// Validate checks the range against the state count and MaxSweepRules.
func (q SweepRequest) Validate(maxStates int) error {
	if err := errors.ValidateStates(q.States, maxStates); err != nil {
		return err
	}
	if err := errors.ValidateRule(q.From); err != nil {
		return err
	}
	if q.To < q.From {
		return errors.New(errors.ErrCodeInvalidInput, "range end %d is below its start %d", q.To, q.From)
	}
	if n := q.To - q.From + 1; n > MaxSweepRules || n <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "sweep of %d..%d exceeds %d rules", q.From, q.To, MaxSweepRules)
	}
	perms, _ := digits.Pow(q.States, 3)
	if !digits.Fits(q.To, q.States, perms) {
		return errors.New(errors.ErrCodeRuleOutOfRange, "rule %d is out of range for %d states", q.To, q.States)
	}
	return nil
}

// SweepResult is the classification of every rule in a range.
type SweepResult struct {
	ID        string    `json:"id" bson:"_id"`
	States    int       `json:"states" bson:"states"`
	From      int       `json:"from" bson:"from"`
	To        int       `json:"to" bson:"to"`
	Steps     int       `json:"steps" bson:"steps"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Duration  string    `json:"duration" bson:"duration"`

	// Counts maps a class name to the number of rules in it.
	Counts map[string]int `json:"counts" bson:"counts"`

	// Rules maps a class name to its rules in ascending order.
	Rules map[string][]int `json:"rules" bson:"rules"`
}

// ClassOf returns the class name recorded for rule, or "" if the rule is
// outside the sweep.
func (s *SweepResult) ClassOf(rule int) string {
	for name, rules := range s.Rules {
		for _, r := range rules {
			if r == rule {
				return name
			}
		}
	}
	return ""
}

// Sweep classifies every rule in the request concurrently. Workers are
// bounded by opts.Concurrency (default: one per CPU). The first failure or
// a cancelled context stops the sweep.
//
// progress, if non-nil, is called after each rule with the number of rules
// done so far. It may be called from several goroutines.
func (r *Runner) Sweep(ctx context.Context, req SweepRequest, opts Options, progress func(done int)) (*SweepResult, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := req.Validate(opts.MaxStates); err != nil {
		return nil, err
	}

	workers := opts.Concurrency
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	classes := make([]int, req.To-req.From+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu   sync.Mutex
		done int
	)
	for i := range classes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rule := req.From + i
			rs, err := r.Build(gctx, rule, req.States, opts)
			if err != nil {
				return err
			}
			classes[i] = markov.Classify(rs.Transitions(), opts.Steps).Class

			if progress != nil {
				mu.Lock()
				done++
				n := done
				mu.Unlock()
				progress(n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &SweepResult{
		ID:        uuid.NewString(),
		States:    req.States,
		From:      req.From,
		To:        req.To,
		Steps:     opts.Steps,
		CreatedAt: start.UTC(),
		Duration:  time.Since(start).Round(time.Millisecond).String(),
		Counts:    map[string]int{},
		Rules:     map[string][]int{},
	}
	for i, class := range classes {
		name := markov.ClassName(class)
		res.Counts[name]++
		res.Rules[name] = append(res.Rules[name], req.From+i)
	}

	r.Logger.Info("sweep complete",
		"states", req.States,
		"rules", len(classes),
		"counts", res.Counts,
		"duration", res.Duration)
	return res, nil
}
