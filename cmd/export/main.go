package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stemsi/academic-dashboard/internal/config"
	"github.com/stemsi/academic-dashboard/internal/logger"
	"github.com/stemsi/academic-dashboard/internal/model"
	"github.com/stemsi/academic-dashboard/internal/repository"
	"github.com/stemsi/academic-dashboard/internal/service"
)

// schoolFlags collects every -school occurrence.
type schoolFlags []string

func (s *schoolFlags) String() string { return strings.Join(*s, ", ") }

func (s *schoolFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type output struct {
	name  string
	write func(context.Context, model.ViewState, io.Writer) error
}

func outputs(svc *service.DashboardService) []output {
	return []output{
		{"rendimiento-escuelas.png", svc.ChartPNG},
		{"rendimiento-escuelas.xlsx", svc.ExportXLSX},
		{"rendimiento-escuelas.csv", svc.ExportCSV},
	}
}

// parseState validates the flags and returns the normalized view state.
func parseState(svc *service.DashboardService, schools []string, sortKey string) (model.ViewState, error) {
	return svc.Normalize(model.ViewState{Selected: schools, SortKey: model.SortKey(sortKey)})
}

// exportAll renders every output for state into dir and returns the written paths.
// A file is only created once its content rendered successfully.
func exportAll(ctx context.Context, svc *service.DashboardService, state model.ViewState, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	for _, out := range outputs(svc) {
		var buf bytes.Buffer
		if err := out.write(ctx, state, &buf); err != nil {
			return written, fmt.Errorf("export %s: %w", out.name, err)
		}
		path := filepath.Join(dir, out.name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", path, buf.Len())
		written = append(written, path)
	}
	return written, nil
}

func main() {
	var schools schoolFlags
	flag.Var(&schools, "school", "school to include (repeatable; default all)")
	sortKey := flag.String("sort", string(model.DefaultSortKey), "sort key: enrolled, passed, failed, pctPassed, pctFailed")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Exports always recompute; the render cache is for the server.
	dashboardService := service.NewDashboardService(repository.NewSchoolRepository(), nil, cfg, log)

	state, err := parseState(dashboardService, schools, *sortKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid selection")
	}

	fmt.Println("=== Exporting dashboard ===")

	if _, err := exportAll(ctx, dashboardService, state, *outDir); err != nil {
		log.Fatal().Err(err).Str("dir", *outDir).Msg("Export failed")
	}
}
