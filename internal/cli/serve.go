package cli

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/percept"
	"github.com/happyhackingspace/percept/internal/metrics"
	"github.com/happyhackingspace/percept/perceptron"
)

func (c *CLI) newServeCommand() *cobra.Command {
	var modelPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scoring requests over HTTP",
		Example: `  percept serve --model model.json
  percept serve --model model.json --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Addr
			}
			tagger, err := percept.Load(modelPath)
			if err != nil {
				return err
			}
			slog.Info("Model loaded", "path", modelPath,
				"classes", tagger.NumClasses(), "cells", tagger.Cells())
			return serve(cmd.Context(), addr, tagger)
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.json", "Path to model file")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	return cmd
}

type scoreRequest struct {
	Features []perceptron.Feature `json:"features,omitempty"`
	Attrs    map[string]any       `json:"attrs,omitempty"`
}

type scoreResponse struct {
	Class  perceptron.Class `json:"class"`
	Scores []float64        `json:"scores"`
}

func serve(ctx context.Context, addr string, tagger *percept.Tagger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /score", func(w http.ResponseWriter, r *http.Request) {
		status := handleScore(w, r, tagger)
		metrics.RecordHTTPRequest("/score", r.Method, strconv.Itoa(status))
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
		metrics.RecordHTTPRequest("/healthz", r.Method, "200")
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func handleScore(w http.ResponseWriter, r *http.Request, tagger *percept.Tagger) int {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return http.StatusBadRequest
	}
	features := req.Features
	if len(features) == 0 {
		features = perceptron.Featurize(req.Attrs)
	}
	if len(features) == 0 {
		http.Error(w, "request has neither features nor attrs", http.StatusBadRequest)
		return http.StatusBadRequest
	}

	start := time.Now()
	scores := tagger.Scores(features)
	metrics.ObserveScoreLatency(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(scoreResponse{
		Class:  perceptron.Decide(scores),
		Scores: scores,
	})
	return http.StatusOK
}
