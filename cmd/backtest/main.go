package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ladderbot/internal/backtest"
	"ladderbot/internal/config"
	"ladderbot/internal/exchange/upbit/rest"
	"ladderbot/internal/logger"
	"ladderbot/internal/models"
	"ladderbot/internal/store"
)

const dateLayout = "2006-01-02"

func main() {
	pflag.String("market", "KRW-BTC", "market to replay")
	pflag.String("start", "", "first day, inclusive (YYYY-MM-DD or RFC3339)")
	pflag.String("end", "", "last instant, exclusive (YYYY-MM-DD or RFC3339)")
	pflag.String("candles-csv", "", "read candles from this file instead of the exchange")
	pflag.Bool("no-store", false, "skip writing rows to the store")
	pflag.Int("unit", 1, "candle unit in minutes")
	pflag.String("settings", "configs/settings.yaml", "market settings file")
	pflag.String("output", "results", "directory for the result CSV")
	pflag.Parse()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(err)
	}
	for key, flag := range map[string]string{
		"backtest.candle_unit": "unit",
		"bot.settings_file":    "settings",
		"backtest.output_dir":  "output",
	} {
		if err := viper.BindPFlag(key, pflag.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Runtime.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("Backtest failed.")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	market := viper.GetString("market")
	entry := log.WithMarket(market)

	setting, err := settingFor(cfg.Bot.SettingsFile, market)
	if err != nil {
		return err
	}

	candles, err := loadCandles(ctx, cfg, log, market)
	if err != nil {
		return err
	}
	entry.WithField("candles", len(candles)).Info("Candles loaded.")

	result, err := backtest.Replay(paramsFrom(cfg), setting, candles)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	path, err := writeResult(cfg.Backtest.OutputDir, market, result.Rows)
	if err != nil {
		return err
	}
	entry.WithField("path", path).Info("Result written.")

	if len(result.Rows) > 0 {
		final := result.Final
		entry.WithFields(map[string]any{
			"realized_pnl":    final.RealizedPnL,
			"cash":            final.Cash,
			"total_fee":       final.TotalFee,
			"portfolio_value": final.PortfolioValue,
		}).Info("Replay finished.")
	}

	if viper.GetBool("no-store") || cfg.Store.Driver == "none" {
		return nil
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	runID, err := st.SaveBacktestRows(ctx, result.Rows)
	if err != nil {
		return err
	}
	entry.WithField("run_id", runID).Info("Rows stored.")
	return nil
}

func settingFor(path, market string) (models.Setting, error) {
	settings, err := config.LoadSettings(path)
	if err != nil {
		return models.Setting{}, err
	}
	for _, s := range settings {
		if s.Market == market {
			return s, nil
		}
	}
	return models.Setting{}, fmt.Errorf("no settings for %s in %s", market, path)
}

func loadCandles(ctx context.Context, cfg *config.Config, log *logger.Logger, market string) ([]models.Candle, error) {
	if path := viper.GetString("candles-csv"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open candles: %w", err)
		}
		defer f.Close()
		return backtest.ReadCandlesCSV(f)
	}

	start, err := parseTime(viper.GetString("start"))
	if err != nil {
		return nil, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := parseTime(viper.GetString("end"))
	if err != nil {
		return nil, fmt.Errorf("invalid --end: %w", err)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("--start must be before --end")
	}

	client := rest.New(cfg.Exchange.BaseURL, "", "", cfg.Exchange.RequestTimeout, log)
	fetcher := backtest.NewFetcher(client, log.WithComponent("fetcher"))
	if cfg.Backtest.PageSize > 0 {
		fetcher.PageSize = cfg.Backtest.PageSize
	}
	return fetcher.Candles(ctx, market, cfg.Backtest.CandleUnit, start, end)
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation(dateLayout, value, time.UTC)
}

func paramsFrom(cfg *config.Config) backtest.Params {
	c := cfg.Backtest
	p := backtest.DefaultParams()
	p.RepriceRatio = cfg.Bot.RepriceRatio
	p.InitialCash = c.InitialCash
	p.FeeRate = c.FeeRate
	p.MinCashRatio = c.MinCashRatio
	p.StopLossPct = c.StopLossPct
	p.Dust = c.Dust
	if len(c.TakeProfitLevels) > 0 {
		p.TakeProfitLevels = make([]backtest.TakeProfitLevel, 0, len(c.TakeProfitLevels))
		for _, l := range c.TakeProfitLevels {
			p.TakeProfitLevels = append(p.TakeProfitLevels, backtest.TakeProfitLevel{Gain: l.Gain, Ratio: l.Ratio})
		}
	}
	return p
}

func writeResult(dir, market string, rows []backtest.Row) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", market, time.Now().UTC().Format("20060102T150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create result: %w", err)
	}
	if err := backtest.WriteCSV(f, rows); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
