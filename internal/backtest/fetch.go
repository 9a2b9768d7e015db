package backtest

import (
	"context"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"ladderbot/internal/exchange"
	"ladderbot/internal/models"
)

// Fetcher pages historical candles out of a CandleSource.
type Fetcher struct {
	Source   exchange.CandleSource
	PageSize int
	Pause    time.Duration
	Retries  int
	Backoff  time.Duration
	Log      logrus.FieldLogger
}

func NewFetcher(source exchange.CandleSource, log logrus.FieldLogger) *Fetcher {
	return &Fetcher{
		Source:   source,
		PageSize: 200,
		Pause:    300 * time.Millisecond,
		Retries:  5,
		Backoff:  time.Second,
		Log:      log,
	}
}

// Candles returns the bars of [start, end) in ascending order. An empty page
// ends the range early without error.
func (f *Fetcher) Candles(ctx context.Context, market string, unit int, start, end time.Time) ([]models.Candle, error) {
	step := time.Duration(unit) * time.Minute
	seen := make(map[time.Time]struct{})
	var out []models.Candle

	cursor := start
	for cursor.Before(end) {
		to := cursor.Add(step * time.Duration(f.PageSize))
		page, err := f.page(ctx, market, unit, to)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			f.log().WithField("cursor", cursor).Info("No more candles, range ends early.")
			break
		}

		newest := page[0].Time
		for _, c := range page {
			if c.Time.After(newest) {
				newest = c.Time
			}
			if c.Time.Before(start) || !c.Time.Before(end) {
				continue
			}
			if _, dup := seen[c.Time]; dup {
				continue
			}
			seen[c.Time] = struct{}{}
			out = append(out, c)
		}

		next := newest.Add(step)
		if !next.After(cursor) {
			f.log().WithFields(logrus.Fields{"market": market, "cursor": cursor, "newest": newest}).
				Warn("Page ends before the cursor, range truncated.")
			break
		}
		cursor = next

		if f.Pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.Pause):
			}
		}
	}

	slices.SortFunc(out, func(a, b models.Candle) int { return a.Time.Compare(b.Time) })
	f.log().WithFields(logrus.Fields{"market": market, "candles": len(out)}).Info("Candles fetched.")
	return out, nil
}

func (f *Fetcher) page(ctx context.Context, market string, unit int, to time.Time) ([]models.Candle, error) {
	var lastErr error
	backoff := f.Backoff
	attempts := max(f.Retries, 1)
	for i := 0; i < attempts; i++ {
		page, err := f.Source.GetMinuteCandles(ctx, market, unit, f.PageSize, to)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		wait := min(backoff, 30*time.Second)
		if exchange.IsRateLimit(err) {
			wait = min(backoff*4, 30*time.Second)
		}
		f.log().WithError(err).WithField("attempt", i+1).Warn("Candle request failed, retrying.")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
	return nil, lastErr
}

func (f *Fetcher) log() logrus.FieldLogger {
	if f.Log != nil {
		return f.Log
	}
	return logrus.StandardLogger()
}
