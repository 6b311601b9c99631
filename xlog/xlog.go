// Package xlog wires structured logging, the per-frame stage guard, and
// the crash logger used on unrecoverable failures.
package xlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the engine logger. Debug mode uses the development config
// with console encoding; release mode logs structured JSON at info.
func New(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// CrashLogger writes a single-line crash record to a user-writable log
// directory and flushes buffered log output before the process dies.
type CrashLogger struct {
	Log *zap.Logger
	Dir string // defaults to <user cache dir>/ember

	// Exit is called after the record is written. Defaults to os.Exit.
	Exit func(code int)
}

// NewCrashLogger creates a crash logger rooted at the user cache dir.
func NewCrashLogger(log *zap.Logger) *CrashLogger {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return &CrashLogger{Log: log, Dir: filepath.Join(dir, "ember")}
}

// Record appends one line describing the failure to crash.log. It never
// returns an error; a crash logger that cannot write still flushes logs.
func (c *CrashLogger) Record(stage string, cause any) {
	if c == nil {
		return
	}
	if c.Log != nil {
		c.Log.Error("crash", zap.String("stage", stage), zap.Any("cause", cause))
		_ = c.Log.Sync()
	}
	if c.Dir == "" {
		return
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(c.Dir, "crash.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s stage=%s cause=%v\n", time.Now().UTC().Format(time.RFC3339), stage, cause)
}

// Terminate records the failure and exits non-zero.
func (c *CrashLogger) Terminate(stage string, cause any) {
	c.Record(stage, cause)
	exit := os.Exit
	if c != nil && c.Exit != nil {
		exit = c.Exit
	}
	exit(1)
}

// Guard runs per-frame stages and converts panics into logged skips or
// process termination, depending on configuration.
type Guard struct {
	Log       *zap.Logger
	Crash     *CrashLogger
	Terminate bool // true: a panicking stage kills the process
}

// Run executes fn under the guard. A panic inside fn is captured, logged
// with the stage tag, and either swallowed (the stage is skipped for this
// frame) or forwarded to the crash logger.
func (g *Guard) Run(stage string, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if g.Terminate && g.Crash != nil {
			g.Crash.Terminate(stage, r)
			return
		}
		if g.Log != nil {
			g.Log.Error("stage panicked, skipping frame", zap.String("stage", stage), zap.Any("cause", r))
		}
		err = fmt.Errorf("xlog: stage %s panicked: %v", stage, r)
	}()
	if err := fn(); err != nil {
		if g.Log != nil {
			g.Log.Warn("stage failed", zap.String("stage", stage), zap.Error(err))
		}
		return err
	}
	return nil
}
