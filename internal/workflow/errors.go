package workflow

import "errors"

// ErrInvalidWorkflow is returned when the top-level workflow document
// cannot be parsed. A malformed individual node is skipped and logged
// instead of aborting the whole analysis (spec §4.2 failure semantics).
var ErrInvalidWorkflow = errors.New("invalid workflow")
