// Package domain models monitored rivers, their flood alert levels, and the
// users who follow them.
//
// # River Records
//
// A river record carries the latest measured level in meters, the time of
// that measurement, and the alert level derived from it. Records also carry
// the shelters near the river and, when the data source has it, a short
// weather forecast and a few days of level history:
//
//	Rio Tietê         4.2 m  yellow
//	Rio Pinheiros     2.8 m  green
//	Rio Paranapanema  5.5 m  red
//
// The alert level of a record must always be derivable from its level. Any
// code that changes a level goes through [RiverRecord.ApplyLevel], which sets
// the level, the alert level, and the update time together.
//
// # Alert Levels
//
// Three levels, totally ordered by severity: green < yellow < red.
//
// Classification uses closed lower bounds ([Classify]):
//
//	level >= 5.0 m  red
//	level >= 4.0 m  yellow
//	otherwise       green
//
// Negative, zero, and NaN levels classify green; +Inf classifies red.
//
// A second, older set of thresholds exists in the mobile client that this
// service backs (<= 2.0 m green, <= 3.5 m yellow, otherwise red). It
// disagrees with the live-update thresholds for every level between 2.0 m and
// 5.0 m (Rio Pinheiros at 2.8 m is green under one and yellow under the
// other). It is kept as [ClassifyLegacy] so tooling can report the drift; it
// never drives display.
//
// # Optional Fields
//
// A missing weather forecast is a nil pointer and reads through
// [RiverRecord.Forecast] as a fixed fallback sentence. Missing shelters or
// history are nil slices and render as empty lists.
//
// # Errors
//
// Collaborators report failures through the sentinel errors in this package
// ([ErrNotFound], [ErrDuplicateEmail], [ErrInvalidCredentials],
// [ErrPersistence], [ErrInvalidInput]), wrapped with context. Callers match
// them with errors.Is.
package domain
