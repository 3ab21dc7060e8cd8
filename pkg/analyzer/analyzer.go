package analyzer

import (
	"github.com/simonhull/firebird-suite/roost/pkg/logger"
)

// Document is one project file as read from disk.
type Document struct {
	Path    string
	Content string
}

// Options configures an Analyzer.
type Options struct {
	// Strategy resolves packages observed with more than one version.
	Strategy Strategy
	// ExcludeProperties are property names never hoisted.
	ExcludeProperties []string
}

// Analyzer runs property and package analysis over project documents
type Analyzer struct {
	strategy Strategy
	exclude  map[string]bool
	logger   logger.Logger
}

// New creates an Analyzer that logs nothing until WithLogger is used.
func New(opts Options) *Analyzer {
	exclude := make(map[string]bool, len(opts.ExcludeProperties))
	for _, name := range opts.ExcludeProperties {
		exclude[name] = true
	}
	return &Analyzer{
		strategy: opts.Strategy,
		exclude:  exclude,
		logger:   logger.NewSilentLogger(),
	}
}

// WithLogger returns a new Analyzer with the specified logger
func (a *Analyzer) WithLogger(log logger.Logger) *Analyzer {
	return &Analyzer{
		strategy: a.strategy,
		exclude:  a.exclude,
		logger:   log,
	}
}

// Strategy returns the conflict resolution strategy in use.
func (a *Analyzer) Strategy() Strategy {
	return a.strategy
}
