// Copyright (c) 2026 The hwloc-go Authors.
// SPDX-License-Identifier: Apache-2.0

package base

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// LogObject holds the fields attached to every log entry emitted through it.
// Library code receives a *LogObject argument instead of using a package
// level logger so that two topology builds in the same process can log with
// different sources and levels.
type LogObject struct {
	Initialized bool
	Fields      map[string]interface{}
	logger      *logrus.Logger
}

// logSourceObjectMap tracks objects handed out by NewSourceLogObject so
// repeated calls for the same source share one object.
var logSourceObjectMap sync.Map

// NewSourceLogObject returns the LogObject for the given source name and
// pid, creating it on first use.
func NewSourceLogObject(logger *logrus.Logger, sourceName string, sourcePid int) *LogObject {
	value, ok := logSourceObjectMap.Load(sourceName)
	if ok {
		object, ok := value.(*LogObject)
		if ok {
			return object
		}
		logrus.Fatalf("NewSourceLogObject: object found is not of type *LogObject, found: %T",
			value)
	}

	object := new(LogObject)
	object.logger = logger
	object.Initialized = true
	object.Fields = map[string]interface{}{
		"source": sourceName,
		"pid":    sourcePid,
	}
	logSourceObjectMap.Store(sourceName, object)
	return object
}
