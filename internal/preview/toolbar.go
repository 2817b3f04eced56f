package preview

import (
	"context"

	"github.com/conneroisu/docblocks/internal/errors"
	"github.com/conneroisu/docblocks/internal/logging"
)

const toolbarConflictMessage = "toolbar disabled with multiple preview children"

// ShouldShowToolbar reports whether the zoom toolbar may be rendered. A
// request made together with multiple children is dropped and logged once
// as a configuration conflict.
func ShouldShowToolbar(ctx context.Context, logger logging.Logger, requested bool, children Children) bool {
	if !requested {
		return false
	}
	if children.Kind() == Many {
		if logger != nil {
			err := errors.NewConfigurationConflictError(errors.ErrCodeToolbarMultiChild, toolbarConflictMessage)
			logger.Warn(ctx, err, toolbarConflictMessage, "children", children.Len())
		}
		return false
	}
	return true
}
