// Package log has the logger accepted by the hkxbatch SDK.
//
// Any [Logger] implementation can be set in lib.Config to receive the conversion
// logs (tool invocations, failed files, batch results). [Noop] is used when none
// is set. Most applications only need meaningful Infof, Warningf, Errorf and
// Debugf implementations, e.g. forwarding to log/slog.
package log

import "github.com/slok/hkxbatch/internal/log"

// Logger receives the SDK logs.
type Logger = log.Logger

// Kv are structured key-value log fields.
type Kv = log.Kv

// Noop discards every log.
var Noop = log.Noop
