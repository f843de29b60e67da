// Package result provides a generic success/failure value for expected
// failure paths.
//
// A [Result] is either a success carrying data or a failure carrying an
// error. The tag is fixed at construction and every combinator returns a new
// value, so a Result can be shared across goroutines without locking.
//
// # Constructing
//
//	r := result.Success(user)
//	r := result.Failure[*User](repository.ErrNotFound)
//
//	// Wrap a fallible call. Panics are recovered into a failure.
//	r := result.TryCatch(ctx, func(ctx context.Context) (*User, error) {
//	    return repo.UserByEmail(ctx, email)
//	})
//
// # Combinators
//
//   - [Map] transforms the success value. Errors and panics raised by the
//     mapping function become failures.
//   - [AndThen] and [AndThenSync] chain a Result-returning continuation and
//     short-circuit on failure.
//   - [MapError] transforms the error channel only. A panic inside the
//     mapping function is not recovered.
//   - [GetOrElse], [GetOrElseL] and [Match] unwrap or fold both branches.
//
// # Normalizing errors
//
// Failures produced from recovered panics or non-error values are wrapped in
// [ErrorInfo]. Callers can pass their own [Normalizer] to [Map] and
// [TryCatch].
package result
