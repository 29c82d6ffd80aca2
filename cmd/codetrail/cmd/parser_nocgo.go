//go:build !cgo

package cmd

import (
	"errors"

	"github.com/corey/codetrail/internal/config"
	"github.com/corey/codetrail/internal/ports"
	"github.com/corey/codetrail/pkg/logger"
)

// newParser fails when CGo is unavailable: tree-sitter is a C library and
// there is no pure Go fallback.
func newParser(_ *config.Config, _ logger.Logger) (ports.Parser, func(), error) {
	return nil, func() {}, errors.New("codetrail was built without cgo; rebuild with CGO_ENABLED=1")
}
