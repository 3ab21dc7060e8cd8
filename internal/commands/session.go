package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/roost/internal/config"
	"github.com/simonhull/firebird-suite/roost/pkg/analyzer"
	"github.com/simonhull/firebird-suite/roost/pkg/input"
	"github.com/simonhull/firebird-suite/roost/pkg/logger"
	"github.com/simonhull/firebird-suite/roost/pkg/metrics"
	"github.com/simonhull/firebird-suite/roost/pkg/output"
	"github.com/simonhull/firebird-suite/roost/pkg/project"
	"github.com/simonhull/firebird-suite/roost/pkg/report"
)

// backupDirName is hidden so scans never pick up backed-up project files.
const backupDirName = ".roost"

// isInteractive is swapped in tests.
var isInteractive = input.IsInteractive

// session is the state shared by one command invocation
type session struct {
	root     string
	cfg      *config.Config
	log      logger.Logger
	metrics  *metrics.Recorder
	prompt   *input.Prompter
	report   *report.Reporter
	out      io.Writer
	runID    string
	started  time.Time
	interact bool
}

func newSession(cmd *cobra.Command) (*session, error) {
	dir, _ := cmd.Flags().GetString("directory")
	cfgPath, _ := cmd.Flags().GetString("config")

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	cfg, err := config.Load(root, cfgPath)
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if output.IsVerbose() && level > logger.LevelDebug {
		level = logger.LevelDebug
	}

	runID := uuid.NewString()
	log := logger.New(logger.Options{
		Level:  level,
		Format: cfg.Log.Format,
		Out:    cmd.ErrOrStderr(),
	}).WithFields(logger.F("run", runID))

	return &session{
		root:     root,
		cfg:      cfg,
		log:      log,
		metrics:  metrics.New(),
		prompt:   input.New(cmd.InOrStdin(), cmd.OutOrStdout()),
		report:   report.New(cmd.OutOrStdout(), root),
		out:      cmd.OutOrStdout(),
		runID:    runID,
		started:  time.Now(),
		interact: isInteractive(),
	}, nil
}

// scan reads the project files under root. An empty result is reported
// here so callers can return early.
func (s *session) scan(ctx context.Context) ([]analyzer.Document, error) {
	output.Verbose(fmt.Sprintf("Scanning %s", s.root))

	docs, err := project.Scan(ctx, s.root, project.ScanOptions{
		Extensions: s.cfg.Scan.Extensions,
		IgnoreDirs: s.cfg.Scan.IgnoreDirs,
		Logger:     s.log,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveProjects(len(docs))
	if len(docs) == 0 {
		output.Warn(fmt.Sprintf("No project files found in %s", s.root))
		return nil, nil
	}

	output.Info(fmt.Sprintf("Found %d project file(s)", len(docs)))
	for _, doc := range docs {
		output.Verbose(s.rel(doc.Path))
	}
	return docs, nil
}

func (s *session) analyzer(strategy analyzer.Strategy) *analyzer.Analyzer {
	return analyzer.New(analyzer.Options{
		Strategy:          strategy,
		ExcludeProperties: s.cfg.Build.ExcludeProperties,
	}).WithLogger(s.log)
}

func (s *session) backupDir() string {
	return filepath.Join(s.root, backupDirName, "backup", s.runID)
}

func (s *session) rel(path string) string {
	if rel, err := filepath.Rel(s.root, path); err == nil {
		return rel
	}
	return path
}

// confirm asks a yes/no question unless the user already agreed to
// everything.
func (s *session) confirm(yes bool, message string, defaultYes bool) bool {
	if yes || s.cfg.AssumeYes {
		return true
	}
	return s.prompt.Confirm(message, defaultYes)
}

// finish records run metrics. It never fails the command.
func (s *session) finish() {
	s.metrics.Finish(s.started)
	if s.cfg.MetricsFile == "" {
		return
	}

	path := s.cfg.MetricsFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		s.log.Warn("Failed to create metrics directory", logger.F("error", err))
		return
	}
	if err := s.metrics.WriteTextfile(path); err != nil {
		s.log.Warn("Failed to write metrics", logger.F("path", path), logger.F("error", err))
		return
	}
	output.Verbose(fmt.Sprintf("Metrics written to %s", s.rel(path)))
}
