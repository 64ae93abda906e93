// Package errors provides structured error types for better observability
// and programmatic error handling across watchboard.
//
// Store, configuration and session failures carry an ErrorCode so callers can
// classify them without string matching:
//
//	_, err := store.UpdateConfig(ctx, doc, token)
//	if errors.HasCode(err, errors.ErrCodeConflict) {
//	    // re-fetch and resubmit
//	}
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeIO,
//	    "failed to read dashboards document",
//	    cause,
//	    map[string]any{
//	        "namespace": ns,
//	        "name": name,
//	    },
//	)
package errors
