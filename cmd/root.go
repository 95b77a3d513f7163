// Package cmd is the advisor command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	configx "github.com/tanpawarit/Chative-Student-Advisor/pkg/config"
	logx "github.com/tanpawarit/Chative-Student-Advisor/pkg/logger"
)

var (
	envFile     string
	plainOutput bool
	metricsAddr string
	studentFlag string
	termFlag    string
	yearFlag    int
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Student advising assistant",
	Long: `advisor answers student advising questions: which courses a student can
take, course details, term offerings, FAQ answers, and schedule building.

Data comes from YAML/JSON files under ADVISOR_DATA_DIR or from Postgres
(ADVISOR_SOURCE=postgres). The chat and adk commands start a conversation
with the model-backed assistant.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configx.SetEnvFile(envFile)
		if conf, err := configx.New[logx.Config]("LOG"); err == nil {
			logx.Init(*conf)
		}
		return nil
	},
}

// Execute runs the command line with ctx as the root context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "print replies without markdown rendering")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.PersistentFlags().StringVar(&studentFlag, "student", "", "student id (default ADVISOR_STUDENT_ID)")
	rootCmd.PersistentFlags().StringVar(&termFlag, "term", "", "term name, e.g. fall (default ADVISOR_TERM)")
	rootCmd.PersistentFlags().IntVar(&yearFlag, "year", 0, "term year (default ADVISOR_YEAR)")
}

// session loads configuration, wires the app, and builds the request context
// from flags with config defaults.
func session(cmd *cobra.Command) (*app, contractx.RequestContext, error) {
	cfg, err := configx.New[AdvisorConfig]("ADVISOR")
	if err != nil {
		return nil, contractx.RequestContext{}, fmt.Errorf("load advisor config: %w", err)
	}

	a, err := newApp(cmd.Context(), *cfg)
	if err != nil {
		return nil, contractx.RequestContext{}, err
	}

	rc := contractx.RequestContext{
		StudentID: firstNonEmpty(studentFlag, cfg.StudentID),
		Term:      strings.ToLower(firstNonEmpty(termFlag, cfg.Term)),
		Year:      cfg.Year,
		Now:       time.Now().UTC(),
	}
	if yearFlag != 0 {
		rc.Year = yearFlag
	}

	if metricsAddr != "" {
		a.stopMetrics = serveMetrics(metricsAddr, a)
	}
	return a, rc, nil
}

// serveMetrics exposes the app registry until the returned stop is called.
func serveMetrics(addr string, a *app) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
