// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
	"time"

	"github.com/bitmark-inc/logger"
)

// hold a logger channel
var log *logger.L

// Initialise - setup a log channel for last attempt to log something
func Initialise() error {
	if nil != log {
		return AlreadyInitialised
	}
	log = logger.New("PANIC")
	if nil == log {
		return InvalidLoggerChannel
	}
	return nil
}

// Finalise - flush any data
func Finalise() {
	if nil != log {
		log.Flush()
	}
}

// PanicIfError - conditional panic
func PanicIfError(message string, err error) {
	if nil == err {
		return
	}
	s := fmt.Sprintf("%s failed with error: %v", message, err)
	internalCriticalf("%s", s)
	time.Sleep(100 * time.Millisecond) // to allow logging output
	panic(s)
}

// internal routines to handle uninitialised logger channel
func internalCriticalf(format string, arguments ...interface{}) {
	if nil == log {
		fmt.Printf("*** "+format+"\n", arguments...)
	} else {
		log.Criticalf(format, arguments...)
		log.Flush() // make sure log file is saved
	}
}
