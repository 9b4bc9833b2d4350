package logger

import (
	"log"
)

// Logger is the printf style logger shared by every package in this module.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// LoggerEnabled gates output from every DefaultLogger.
var LoggerEnabled = true

type DefaultLogger struct {
	name string
	out  *log.Logger
}

func NewDefaultLogger(name string) *DefaultLogger {
	return &DefaultLogger{name: name, out: log.Default()}
}

// WithOutput routes messages through l instead of the standard logger.
func (d *DefaultLogger) WithOutput(l *log.Logger) *DefaultLogger {
	if l != nil {
		d.out = l
	}
	return d
}

func (d *DefaultLogger) Debug(format string, args ...any) {
	d.print("DEBUG", format, args...)
}

func (d *DefaultLogger) Info(format string, args ...any) {
	d.print("INFO", format, args...)
}

func (d *DefaultLogger) Warn(format string, args ...any) {
	d.print("WARN", format, args...)
}

func (d *DefaultLogger) Error(format string, args ...any) {
	d.print("ERROR", format, args...)
}

func (d *DefaultLogger) print(level, format string, args ...any) {
	if !LoggerEnabled {
		return
	}
	d.out.Printf("["+level+"] "+d.name+" | "+format+"\n", args...)
}

type nop struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}
