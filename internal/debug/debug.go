package debug

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (startup, wiring, faults)
	LevelLive    = 2 // Live info (accepted edges, output changes)
	LevelVerbose = 3 // Verbose (per-tick details)
	LevelTrace   = 4 // Trace (GPIO, very low level)
)

var (
	level  int
	logger *log.Logger
)

// Init initializes the debug system with a level (0-4).
// 0 = no output
// 1 = important info (startup, wiring, faults)
// 2 = live info (accepted button edges, outputs toggled)
// 3 = verbose (per-tick samples and levels)
// 4 = trace (GPIO, very low level)
func Init(debugLevel int) {
	level = debugLevel
	if level > LevelOff {
		logger = log.New()
		logger.SetOutput(os.Stdout)
		logger.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000000",
		})
		logger.SetLevel(logrusLevel(level))
	} else {
		logger = nil
	}
}

// logrusLevel maps a debug level onto the closest logrus level.
func logrusLevel(l int) log.Level {
	switch {
	case l >= LevelTrace:
		return log.TraceLevel
	case l >= LevelVerbose:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// SetOutput redirects log output (e.g. to a MultiWriter that also feeds the web mirror).
func SetOutput(w io.Writer) {
	if logger != nil {
		logger.SetOutput(w)
	}
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Infof(format, args...)
	}
}

// Summary prints an important banner (level 1).
func Summary(title string) {
	if level >= LevelInfo && logger != nil {
		logger.Info("═══════════════════════════════════════")
		logger.Infof("  %s", title)
		logger.Info("═══════════════════════════════════════")
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.WithField(name, value).Info("config")
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive && logger != nil {
		logger.Infof(format, args...)
	}
}

// Transition prints a control state change observed by the loop (level 2).
func Transition(field string, value interface{}) {
	if level >= LevelLive && logger != nil {
		logger.WithField(field, value).Info("state changed")
	}
}

// Outputs prints a change of the output enable flag (level 2).
func Outputs(enabled bool, red, blue int) {
	if level >= LevelLive && logger != nil {
		logger.WithFields(log.Fields{
			"enabled": enabled,
			"red":     red,
			"blue":    blue,
		}).Info("outputs")
	}
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Debugf(format, args...)
	}
}

// PrintStruct prints a struct in formatted form (level 3).
func PrintStruct(name string, v interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Debugf("%s: %+v", name, v)
	}
}

// Section prints a section separator (level 3).
func Section(name string) {
	if level >= LevelVerbose && logger != nil {
		logger.Debug("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		logger.Debugf("  %s", name)
		logger.Debug("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}
}

// Step prints a numbered step (level 3).
func Step(num int, description string) {
	if level >= LevelVerbose && logger != nil {
		logger.Debugf("Step %d: %s", num, description)
	}
}

// Tick prints the per-tick sample and levels (level 3).
func Tick(n uint64, rawX, rawY, levelX, levelY int) {
	if level >= LevelVerbose && logger != nil {
		logger.WithFields(log.Fields{
			"tick":   n,
			"rawX":   rawX,
			"rawY":   rawY,
			"levelX": levelX,
			"levelY": levelY,
		}).Debug("tick")
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message (trace, GPIO).
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Tracef(format, args...)
	}
}

// GPIO prints a GPIO operation (level 4).
func GPIO(operation string, pin int, value interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.WithFields(log.Fields{
			"op":    operation,
			"pin":   pin,
			"value": value,
		}).Trace("gpio")
	}
}

// --- General functions ---

// Error prints a debug error (level 1+).
func Error(err error) {
	if level >= LevelInfo && logger != nil {
		logger.WithError(err).Error("fault")
	}
}
