// Package errors provides the structured error type used across the tracker.
//
// Every error carries a Code so callers can branch on intent without string
// matching:
//
//	err := errors.InvalidArgumentf("unknown monster class %d", class)
//	if errors.IsInvalidArgument(err) {
//	    // reject the input, keep the current state
//	}
//
// Wrapping keeps the original code:
//
//	if err := repo.Save(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to persist cookie")
//	}
//
// Codes used by the tracker:
//   - InvalidArgument: unknown class id, blank name, bad config
//   - NotFound: a summon references a character that is not tracked, missing cookie
//   - OutOfRange: initiative outside 1..99, shift past either end of the order
//   - DataLoss: tracker state corruption; fatal
//   - AlreadyExists: a figure already on the board, a repeated class in a cookie
//   - Unavailable: the Redis store cannot be reached
//   - Internal: other store failures
//
// Config validation uses ValidationBuilder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("session", cfg.Session, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
package errors
