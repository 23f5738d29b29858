package flow

import (
	"log/slog"

	"github.com/tychoish/flow/adt"
	"github.com/tychoish/flow/fn"
)

var (
	undeliverable = &adt.Atomic[fn.Handler[error]]{}
	logger        = &adt.Atomic[*slog.Logger]{}
)

// SetErrorHandler installs the process-wide handler for undeliverable
// errors: errors that arrive after a subscriber has already received
// its terminal signal, or after it canceled. Calls to the handler
// are serialized, even when many subscriptions report at once, so the
// handler must not itself call ReportUndeliverable. A nil handler
// restores the default.
func SetErrorHandler(hf fn.Handler[error]) {
	if hf != nil {
		hf = hf.Lock()
	}
	undeliverable.Set(hf)
}

// ResetErrorHandler restores the default undeliverable error handler,
// which logs the error and drops it.
func ResetErrorHandler() { undeliverable.Set(nil) }

// ErrorHandler returns the handler that ReportUndeliverable
// currently calls.
func ErrorHandler() fn.Handler[error] {
	if hf := undeliverable.Get(); hf != nil {
		return hf
	}
	return logUndeliverable
}

// SetLogger replaces the logger used by the default undeliverable
// error handler. A nil logger restores slog.Default().
func SetLogger(lg *slog.Logger) { logger.Set(lg) }

// Logger returns the logger flow writes diagnostics to.
func Logger() *slog.Logger {
	if lg := logger.Get(); lg != nil {
		return lg
	}
	return slog.Default()
}

// ReportUndeliverable passes an error that has no subscriber to
// receive it to the installed handler. Nil errors are ignored. A
// panic in the handler is recovered and logged along with the
// original error.
func ReportUndeliverable(err error) {
	if err == nil {
		return
	}

	ErrorHandler().WithRecover(func(perr error) {
		Logger().Error("undeliverable error handler panicked",
			slog.Any("err", err),
			slog.Any("panic", perr),
		)
	})(err)
}

func logUndeliverable(err error) {
	Logger().Warn("undeliverable error", slog.Any("err", err))
}
