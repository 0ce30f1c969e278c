package artifact

import (
	"context"
	"log/slog"
)

// Ensure resolves src to a validated local bundle, downloading it when the
// local directory is not usable.
func Ensure(ctx context.Context, src Source, fetcher *Fetcher, logger *slog.Logger) (*Bundle, error) {
	plan, err := Locate(src)
	if err != nil {
		return nil, err
	}

	switch plan.Strategy {
	case StrategyLocal:
		logger.Info("using local model bundle", "dir", plan.Dir)
		return &Bundle{Dir: plan.Dir, Strategy: StrategyLocal}, nil
	default:
		logger.Info("local model bundle unusable, fetching", "dir", plan.Dir, "url", RedactURL(plan.URL))
		return fetcher.Fetch(ctx, plan.URL, plan.Dir)
	}
}
