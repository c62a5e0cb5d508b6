// Package logging provides categorized logging for taskchat, backed by
// zap. Every log line carries a category field so one turn's activity
// can be followed across the orchestrator, parser, tools and store.
// Before Init is called all helpers are no-ops, which keeps library
// packages silent under test.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies the subsystem a log line belongs to.
type Category string

const (
	CategoryBoot         Category = "boot"         // startup and wiring
	CategoryAPI          Category = "api"          // model completion calls
	CategoryParser       Category = "parser"       // breakdown parsing
	CategoryResolve      Category = "resolve"      // parent resolution
	CategoryTools        Category = "tools"        // tool registry dispatch
	CategoryOrchestrator Category = "orchestrator" // turn state machine
	CategoryStore        Category = "store"        // persistence
	CategoryConfig       Category = "config"       // config load and reload
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init installs the process-wide logger. debug enables debug-level
// output for all categories.
func Init(base *zap.Logger, debug bool) {
	mu.Lock()
	defer mu.Unlock()
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
	logger = base
}

// SetDebug flips debug-level logging at runtime (config hot reload).
func SetDebug(debug bool) {
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// Level returns the shared atomic level, for wiring into zap configs.
func Level() zap.AtomicLevel {
	return level
}

// For returns a sugared logger tagged with the given category.
func For(cat Category) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.Sugar().With("cat", string(cat))
}

// Sync flushes buffered log entries. Safe to call at process exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = logger.Sync()
}

func debugf(cat Category, format string, args ...any) {
	if !level.Enabled(zapcore.DebugLevel) {
		return
	}
	For(cat).Debugf(format, args...)
}

func infof(cat Category, format string, args ...any) {
	For(cat).Infof(format, args...)
}

func warnf(cat Category, format string, args ...any) {
	For(cat).Warnf(format, args...)
}

func errorf(cat Category, format string, args ...any) {
	For(cat).Errorf(format, args...)
}

// Per-category helpers. Call sites read like a statement of which
// subsystem is speaking.

func BootInfo(format string, args ...any)  { infof(CategoryBoot, format, args...) }
func BootError(format string, args ...any) { errorf(CategoryBoot, format, args...) }

func APIDebug(format string, args ...any) { debugf(CategoryAPI, format, args...) }
func APIWarn(format string, args ...any)  { warnf(CategoryAPI, format, args...) }

func ParserDebug(format string, args ...any) { debugf(CategoryParser, format, args...) }

func ResolveDebug(format string, args ...any) { debugf(CategoryResolve, format, args...) }

func ToolsDebug(format string, args ...any) { debugf(CategoryTools, format, args...) }
func ToolsWarn(format string, args ...any)  { warnf(CategoryTools, format, args...) }

func OrchDebug(format string, args ...any) { debugf(CategoryOrchestrator, format, args...) }
func OrchInfo(format string, args ...any)  { infof(CategoryOrchestrator, format, args...) }
func OrchWarn(format string, args ...any)  { warnf(CategoryOrchestrator, format, args...) }

func StoreDebug(format string, args ...any) { debugf(CategoryStore, format, args...) }
func StoreError(format string, args ...any) { errorf(CategoryStore, format, args...) }

func ConfigDebug(format string, args ...any) { debugf(CategoryConfig, format, args...) }
func ConfigWarn(format string, args ...any)  { warnf(CategoryConfig, format, args...) }
