package flowtest

import (
	"testing"

	"github.com/tychoish/flow"
	"github.com/tychoish/flow/erc"
)

// CaptureUndeliverable installs a collector as the process-wide
// undeliverable error handler and restores the default handler when
// the test finishes. Tests that call it must not run in parallel with
// other tests that depend on the handler.
func CaptureUndeliverable(t testing.TB) *erc.Collector {
	t.Helper()
	ec := &erc.Collector{}
	flow.SetErrorHandler(ec.Handler())
	t.Cleanup(flow.ResetErrorHandler)
	return ec
}
