package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/b0yank/betting-recommender/internal/engine"
	"github.com/b0yank/betting-recommender/internal/health"
	"github.com/b0yank/betting-recommender/internal/metrics"
	"github.com/b0yank/betting-recommender/internal/scheduler"
)

func newUpdateCmd() *cobra.Command {
	var through string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replay completed games into the rating history",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(through, time.Now().UTC())
			if err != nil {
				return err
			}
			if through != "" {
				date = endOfDay(date)
			}
			if err := eng.UpdateRatings(cmd.Context(), date); err != nil {
				return err
			}
			fmt.Printf("Ratings updated through %s\n", date.Format(dateLayout))
			return nil
		},
	}
	cmd.Flags().StringVar(&through, "through", "", "Last game date to include (YYYY-MM-DD, default today)")
	return cmd
}

func newEstimateCmd() *cobra.Command {
	var (
		leagues    []int64
		from, to   string
		useForm    bool
		marketList string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate market probabilities for upcoming fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			start, err := parseDate(from, now)
			if err != nil {
				return err
			}
			end, err := parseDate(to, start.AddDate(0, 0, 7))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("use-form") {
				useForm = cfg.Estimator.UseForm
			}

			batch, err := eng.EstimateOdds(cmd.Context(), engine.EstimateRequest{
				LeagueIDs: leagues,
				Start:     start,
				End:       endOfDay(end),
				UseForm:   useForm,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(batch)
			}
			printBatch(batch, strings.Split(marketList, ","))
			return nil
		},
	}
	cmd.Flags().Int64SliceVarP(&leagues, "league", "l", nil, "League ids to estimate (repeatable)")
	cmd.Flags().StringVar(&from, "from", "", "First fixture date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&to, "to", "", "Last fixture date (YYYY-MM-DD, default a week after --from)")
	cmd.Flags().BoolVar(&useForm, "use-form", true, "Include home and away form in the rating gap")
	cmd.Flags().StringVar(&marketList, "markets", "1,X,2,over_2.5,btts_yes", "Comma separated markets to print")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full batch as JSON")
	_ = cmd.MarkFlagRequired("league")
	return cmd
}

func printBatch(batch *engine.EstimateBatch, markets []string) {
	for _, est := range batch.Estimates {
		fmt.Printf("%s  game %d  %d v %d  gap %.1f  n=%d", est.Date.Format(dateLayout), est.GameID,
			est.HomeTeamID, est.AwayTeamID, est.PointsDiff, est.SampleSize)
		if est.LowConfidence {
			fmt.Print("  [low confidence]")
		}
		if est.UsedFallback {
			fmt.Print("  [fallback]")
		}
		fmt.Println()

		for _, name := range markets {
			p, ok := est.Probability(name)
			if !ok {
				continue
			}
			coef := "-"
			if c, ok := est.FairCoefficient(name); ok {
				coef = c.StringFixed(2)
			}
			fmt.Printf("    %-14s %6.3f  %s\n", name, p, coef)
		}
	}
	for _, f := range batch.Failures {
		fmt.Printf("game %d skipped: %v\n", f.GameID, f)
	}
}

func newRatingCmd() *cobra.Command {
	var (
		team int64
		date string
	)
	cmd := &cobra.Command{
		Use:   "rating",
		Short: "Show a team's rating as of a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseDate(date, time.Now().UTC())
			if err != nil {
				return err
			}
			if date != "" {
				at = endOfDay(at)
			}
			entry, err := eng.RatingAt(cmd.Context(), team, at)
			if err != nil {
				return err
			}
			fmt.Printf("team %d  league %d  rating %.2f  home form %+.2f  away form %+.2f  games %d/%d  calibrating %t  since %s\n",
				entry.TeamID, entry.LeagueID, entry.Rating, entry.HomeFormDelta, entry.AwayFormDelta,
				entry.HomeGamesCount, entry.AwayGamesCount, entry.IsCalibrating, entry.Date.Format(dateLayout))
			return nil
		},
	}
	cmd.Flags().Int64VarP(&team, "team", "t", 0, "Team id")
	cmd.Flags().StringVar(&date, "date", "", "Rating date (YYYY-MM-DD, default now)")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}

func newFitCmd() *cobra.Command {
	var (
		league   int64
		defaults engine.FitDefaults
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Refit a league's calibration from its history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := eng.FitCalibration(cmd.Context(), league, defaults)
			if err != nil {
				return err
			}
			fmt.Printf("league %d  start %.0f  advantage %.1f  margin = %.4f + %.6f*gap  home win %.3f  away win %.3f\n",
				cal.LeagueID, cal.StartingRating, cal.ExpectedAdvantage, cal.Intercept, cal.Coef,
				cal.MarginBySign.HomeWin, cal.MarginBySign.AwayWin)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&league, "league", "l", 0, "League id")
	cmd.Flags().Float64Var(&defaults.StartingRating, "starting-rating", 1500, "Starting rating for a league without calibration")
	cmd.Flags().Float64Var(&defaults.ExpectedAdvantage, "expected-advantage", 60, "Home advantage for a league without calibration")
	_ = cmd.MarkFlagRequired("league")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve health and metrics and run scheduled rating updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := eng.Load(ctx); err != nil {
				return err
			}

			srvCfg := health.Config{
				ServiceName: cfg.App.Name,
				Version:     Version,
				Port:        cfg.Metrics.Port,
				Logger:      appLog,
				DB:          pinger,
				Ratings:     eng,
			}
			if cfg.Metrics.Enabled {
				metrics.InitRegistry()
				srvCfg.MetricsPath = cfg.Metrics.Path
				srvCfg.MetricsHandler = metrics.Handler()
			}
			srv := health.NewServer(srvCfg)
			if err := srv.Start(ctx); err != nil {
				return err
			}

			if err := eng.UpdateRatings(ctx, time.Now().UTC()); err != nil {
				appLog.WithError(err).Error("Initial rating update failed")
			}
			srv.SetReady(true)

			if cfg.Scheduler.Enabled {
				sched := scheduler.NewScheduler(eng, appLog)
				if err := sched.ScheduleRatingUpdate(cfg.Scheduler.UpdateCron); err != nil {
					return err
				}
				if err := sched.Start(); err != nil {
					return err
				}
				defer sched.Stop()
				appLog.WithField("next_run", sched.GetNextRun()).Info("Rating updates scheduled")
			}

			appLog.WithFields(logrus.Fields{
				"port":      cfg.Metrics.Port,
				"scheduler": cfg.Scheduler.Enabled,
			}).Info("Recommender serving")

			<-ctx.Done()
			appLog.Info("Shutdown signal received")
			return nil
		},
	}
}
