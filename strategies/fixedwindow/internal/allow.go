package internal

import (
	"context"
	"time"

	"github.com/ajiwo/askailimiter/backends"
	"github.com/ajiwo/askailimiter/strategies"
	"github.com/ajiwo/askailimiter/utils"
)

// AllowMode represents the operation mode for `Allow`
type AllowMode int

const (
	// ReadOnly only inspects current state without modifications
	ReadOnly AllowMode = iota
	// TryUpdate attempts to consume quota with retry logic
	TryUpdate
)

type parameter struct {
	Params
	storage backends.Backend
	now     time.Time
	key     string
	ttl     time.Duration
}

// Allow decides on one request against the counter active at now.
//
// Every path yields a decision. When the counter cannot be read or written,
// the request is admitted with FailOpen set and the cause is returned
// alongside. Running out of CAS attempts also fails open, without an error.
func Allow(ctx context.Context, storage backends.Backend, params Params, now time.Time, mode AllowMode) (strategies.Result, error) {
	p := &parameter{
		Params:  params,
		storage: storage,
		now:     now,
		key:     WindowKey(params.Prefix, now, params.Window),
	}
	if p.MaxRetries <= 0 {
		p.MaxRetries = strategies.DefaultMaxRetries
	}
	if p.Expiry {
		p.ttl = counterTTL(now, p.Window)
	}

	if err := ctx.Err(); err != nil {
		return p.failOpen(0, NewContextCanceledError(err))
	}

	if mode == ReadOnly {
		return p.allowReadOnly(ctx)
	}
	return p.allowTryAndUpdate(ctx)
}

func (p *parameter) result(decision strategies.Decision, count uint32) strategies.Result {
	return strategies.Result{
		Decision:  decision,
		Key:       p.key,
		Count:     count,
		Limit:     p.Limit,
		Remaining: p.Limit - min(count, p.Limit),
		Reset:     BucketEnd(p.now, p.Window),
	}
}

func (p *parameter) failOpen(count uint32, err error) (strategies.Result, error) {
	r := p.result(strategies.Allow, count)
	r.FailOpen = true
	return r, err
}

func (p *parameter) allowReadOnly(ctx context.Context) (strategies.Result, error) {
	raw, _, err := p.storage.Get(ctx, p.key)
	if err != nil {
		return p.failOpen(0, NewStateRetrievalError(p.key, err))
	}

	count := DecodeCount(raw)
	if count >= p.Limit {
		return p.result(strategies.Deny, count), nil
	}
	return p.result(strategies.Allow, count), nil
}

// allowTryAndUpdate reads the counter and swaps in count+1 against the version
// it read, re-reading after every lost race.
func (p *parameter) allowTryAndUpdate(ctx context.Context) (strategies.Result, error) {
	var count uint32

	for attempt := range p.MaxRetries {
		raw, version, err := p.storage.Get(ctx, p.key)
		if err != nil {
			return p.failOpen(count, NewStateRetrievalError(p.key, err))
		}

		count = DecodeCount(raw)
		if count >= p.Limit {
			return p.result(strategies.Deny, count), nil
		}

		start := time.Now()
		swapped, err := p.storage.CheckAndSet(ctx, p.key, EncodeCount(count+1), version, p.ttl)
		if err != nil {
			return p.failOpen(count, NewStateSaveError(p.key, err))
		}
		if swapped {
			return p.result(strategies.Allow, count+1), nil
		}

		if attempt < p.MaxRetries-1 {
			delay := strategies.NextDelay(attempt, time.Since(start))
			if err := utils.SleepOrWait(ctx, delay, strategies.SleepThreshold); err != nil {
				return p.failOpen(count, NewContextCanceledError(err))
			}
		}
	}

	return p.failOpen(count, nil)
}
