// Package gologger backs folio's logging contract with go-logger for
// production deployments.
package gologger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var ErrFormatUnsupported = errors.New("gologger: unsupported format")

type Config struct {
	Level     string
	Format    string
	AddSource bool
	// Focus limits output to the named module loggers (e.g. "folio.auth").
	Focus []string
}

type Provider struct {
	root *glog.BaseLogger
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// NewProvider builds the root go-logger. Format is json (default), console
// or pretty.
func NewProvider(cfg Config) (*Provider, error) {
	var options []glog.Option

	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}

	switch format := strings.ToLower(strings.TrimSpace(cfg.Format)); format {
	case "", "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormatUnsupported, cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	var focus []string
	for _, name := range cfg.Focus {
		if name = strings.TrimSpace(name); name != "" {
			focus = append(focus, name)
		}
	}
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return wrap(p.root)
	}
	return wrap(p.root.GetLogger(name))
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

// adapter masks credential fields before they reach go-logger.
type adapter struct {
	inner glog.Logger
}

var _ interfaces.FieldsLogger = (*adapter)(nil)

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, logging.RedactArgs(args)...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, logging.RedactArgs(args)...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, logging.RedactArgs(args)...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, logging.RedactArgs(args)...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, logging.RedactArgs(args)...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, logging.RedactArgs(args)...) }

// WithFields needs a go-logger FieldsLogger underneath; other loggers are
// returned unchanged.
func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	with, ok := l.inner.(glog.FieldsLogger)
	if !ok {
		return l
	}
	return wrap(with.WithFields(logging.RedactFields(fields)))
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return wrap(l.inner.WithContext(ctx))
}
