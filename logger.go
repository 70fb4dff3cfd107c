package fetch

import (
	"go.uber.org/zap"

	"github.com/frankli0324/go-fetch/internal"
	"github.com/frankli0324/go-fetch/utils/netpool"
)

// SetLogger routes the module's debug logging to l. The default is a
// no-op logger.
func SetLogger(l *zap.Logger) {
	internal.SetLogger(l)
	netpool.SetLogger(l)
}
