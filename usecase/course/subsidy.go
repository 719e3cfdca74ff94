package course

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/learner-portal/domain"
	appLogger "github.com/fastygo/learner-portal/pkg/logger"
)

// SubsidySource is one way a learner may be subsidized for a course. Sources
// are consulted in slice order; earlier sources win.
type SubsidySource struct {
	Type  domain.SubsidyType
	Fetch func(ctx context.Context) (domain.SubsidyPayload, error)
}

// SettledSubsidy is the outcome of one source fetch.
type SettledSubsidy struct {
	Payload domain.SubsidyPayload
	Err     error
}

// ResolveUserSubsidy fetches every source concurrently, waits for all of them
// and returns the first valid subsidy in priority order, or nil. A failing
// source means "no subsidy of this type".
func (uc *UseCase) ResolveUserSubsidy(ctx context.Context, sources []SubsidySource) *domain.Subsidy {
	settled := SettleSubsidies(ctx, sources)

	logger := appLogger.WithRequestID(ctx, uc.logger)
	for i, res := range settled {
		if res.Err != nil {
			logger.Debug("subsidy source unavailable",
				zap.String("subsidy_type", string(sources[i].Type)),
				zap.Error(res.Err),
			)
		}
	}

	subsidy := SelectSubsidy(sources, settled, uc.now())
	if subsidy != nil {
		uc.metrics.SubsidyResolved(string(subsidy.Type))
	} else {
		uc.metrics.SubsidyResolved("")
	}
	return subsidy
}

// SettleSubsidies runs every source and returns once all have finished. Result
// i belongs to sources[i] regardless of completion order.
func SettleSubsidies(ctx context.Context, sources []SubsidySource) []SettledSubsidy {
	settled := make([]SettledSubsidy, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if src.Fetch == nil {
				settled[i] = SettledSubsidy{Err: errNoFetcher}
				return nil
			}
			payload, err := src.Fetch(ctx)
			settled[i] = SettledSubsidy{Payload: payload, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return settled
}

// SelectSubsidy scans settled results in source order and picks the first
// successful payload whose date window contains now.
func SelectSubsidy(sources []SubsidySource, settled []SettledSubsidy, now time.Time) *domain.Subsidy {
	for i, res := range settled {
		if i >= len(sources) {
			break
		}
		if res.Err != nil || !res.Payload.ValidAt(now) {
			continue
		}
		return &domain.Subsidy{Type: sources[i].Type, Payload: res.Payload}
	}
	return nil
}

var errNoFetcher = domain.NewError(domain.ErrCodeInternal, "subsidy source has no fetcher")
