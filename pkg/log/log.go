// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package log provides leveled logging for the telemetry hub.
//
// Time/Date are omitted by default because systemd adds them for us;
// call SetDateTime(true) to enable them. Uses systemd's syslog-priority prefixes:
// https://www.freedesktop.org/software/systemd/man/sd-daemon.html
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelErr
	levelCrit
)

var levelNames = map[level]string{
	levelDebug: "<7>[DEBUG]    ",
	levelInfo:  "<6>[INFO]     ",
	levelWarn:  "<4>[WARNING]  ",
	levelErr:   "<3>[ERROR]    ",
	levelCrit:  "<2>[CRITICAL] ",
}

var writers = map[level]io.Writer{
	levelDebug: os.Stderr,
	levelInfo:  os.Stderr,
	levelWarn:  os.Stderr,
	levelErr:   os.Stderr,
	levelCrit:  os.Stderr,
}

var loggers = map[level]*log.Logger{}

var logDateTime bool

func init() {
	rebuildLoggers()
}

func rebuildLoggers() {
	flags := map[level]int{
		levelDebug: 0,
		levelInfo:  0,
		levelWarn:  log.Lshortfile,
		levelErr:   log.Llongfile,
		levelCrit:  log.Llongfile,
	}
	for lvl, flag := range flags {
		if logDateTime {
			flag |= log.LstdFlags
		}
		loggers[lvl] = log.New(writers[lvl], levelNames[lvl], flag)
	}
}

// SetLevel silences every level below lvl by discarding its writer.
// One of: "debug", "info", "notice", "warn", "err"/"fatal", "crit".
func SetLevel(lvl string) {
	order := []level{levelDebug, levelInfo, levelWarn, levelErr, levelCrit}
	threshold := map[string]level{
		"debug":  levelDebug,
		"info":   levelInfo,
		"notice": levelInfo,
		"warn":   levelWarn,
		"err":    levelErr,
		"fatal":  levelErr,
		"crit":   levelCrit,
	}

	t, ok := threshold[lvl]
	if !ok {
		fmt.Printf("log: invalid loglevel %q, defaulting to 'debug'\n", lvl)
		t = levelDebug
	}

	for _, l := range order {
		if l < t {
			writers[l] = io.Discard
		} else {
			writers[l] = os.Stderr
		}
	}
	rebuildLoggers()
}

func SetDateTime(on bool) {
	logDateTime = on
	rebuildLoggers()
}

func emit(lvl level, s string) {
	if writers[lvl] == io.Discard {
		return
	}
	loggers[lvl].Output(3, s)
}

func Debug(v ...interface{}) { emit(levelDebug, fmt.Sprint(v...)) }
func Info(v ...interface{})  { emit(levelInfo, fmt.Sprint(v...)) }
func Warn(v ...interface{})  { emit(levelWarn, fmt.Sprint(v...)) }
func Error(v ...interface{}) { emit(levelErr, fmt.Sprint(v...)) }
func Crit(v ...interface{})  { emit(levelCrit, fmt.Sprint(v...)) }

// Fatal logs at error level and terminates the process.
func Fatal(v ...interface{}) {
	emit(levelErr, fmt.Sprint(v...))
	os.Exit(1)
}

// Panic logs at error level and panics; the process survives via recover().
func Panic(v ...interface{}) {
	emit(levelErr, fmt.Sprint(v...))
	panic(fmt.Sprint(v...))
}

func Debugf(format string, v ...interface{}) { emit(levelDebug, fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { emit(levelInfo, fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { emit(levelWarn, fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { emit(levelErr, fmt.Sprintf(format, v...)) }
func Critf(format string, v ...interface{})  { emit(levelCrit, fmt.Sprintf(format, v...)) }

func Fatalf(format string, v ...interface{}) {
	emit(levelErr, fmt.Sprintf(format, v...))
	os.Exit(1)
}

func Panicf(format string, v ...interface{}) {
	s := fmt.Sprintf(format, v...)
	emit(levelErr, s)
	panic(s)
}
