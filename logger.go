package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type flogger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// ThreadLogger prefixes every line with the name of its subsystem
type ThreadLogger struct {
	name string
}

func (l *ThreadLogger) Printf(format string, v ...interface{}) {
	log.Printf("%s: %s", l.name, fmt.Sprintf(format, v...))
}

func (l *ThreadLogger) Println(v ...interface{}) {
	log.Printf("%s: %s", l.name, fmt.Sprint(v...))
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// setupLogging sends the log to a rotated logFile (if set), and to
// stderr as well when echo is set
func setupLogging(settings configSettings, echo bool) (io.WriteCloser, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	path := settings.GetString(sLogFile)
	if path == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{os.Stderr}, nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	f.Close()

	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	if echo {
		log.SetOutput(io.MultiWriter(os.Stderr, lj))
	} else {
		log.SetOutput(lj)
	}
	return lj, nil
}
