package zpay32

import "github.com/btcsuite/btclog"

// log is this package's logger. The codec itself never logs on its own
// hot path (it is pure and synchronous, see the concurrency model), but
// callers embedding zpay32 in a larger service can wire their own logger
// through UseLogger the same way every lnd leaf package does.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-wide logger used by zpay32.
func UseLogger(logger btclog.Logger) {
	log = logger
}
