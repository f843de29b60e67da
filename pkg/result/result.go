package result

import "context"

// Result is a tagged success or failure value.
// The zero value is a failure with a nil error; use Success or Failure.
type Result[T any] struct {
	data T
	err  error
	ok   bool
}

// Success builds a successful Result.
func Success[T any](data T) Result[T] {
	return Result[T]{data: data, ok: true}
}

// Failure builds a failed Result.
// A nil err is replaced with ErrUnknown so the failure branch always carries an error.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = ErrUnknown
	}
	return Result[T]{err: err}
}

// IsSuccess reports whether r holds data.
func (r Result[T]) IsSuccess() bool { return r.ok }

// IsFailure reports whether r holds an error.
func (r Result[T]) IsFailure() bool { return !r.ok }

// Data returns the success value and true, or the zero value and false.
func (r Result[T]) Data() (T, bool) {
	if !r.ok {
		var zero T
		return zero, false
	}
	return r.data, true
}

// Err returns the failure error, or nil for a success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	if r.err == nil {
		return ErrUnknown
	}
	return r.err
}

// Unwrap returns the value and error in the conventional Go shape.
func (r Result[T]) Unwrap() (T, error) {
	return r.data, r.Err()
}

// IsSuccess is the function form of Result.IsSuccess.
func IsSuccess[T any](r Result[T]) bool { return r.IsSuccess() }

// IsFailure is the function form of Result.IsFailure.
func IsFailure[T any](r Result[T]) bool { return r.IsFailure() }

// FromPair converts a (value, error) pair into a Result.
func FromPair[T any](data T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(data)
}

// Map applies fn to the success value.
// If fn returns an error or panics, the outcome is a failure built with the
// normalizer (NewErrorInfo by default). Map never lets a panic escape.
func Map[T, U any](r Result[T], fn func(T) (U, error), normalize ...Normalizer) Result[U] {
	if !r.ok {
		return Failure[U](r.Err())
	}
	return TryCatchSync(func() (U, error) { return fn(r.data) }, normalize...)
}

// AndThen threads a Result-returning continuation on the success branch.
// On failure fn is never called and the error is returned unchanged.
// A panic in fn becomes a failure built with the normalizer.
func AndThen[T, U any](ctx context.Context, r Result[T], fn func(context.Context, T) Result[U], normalize ...Normalizer) Result[U] {
	if !r.ok {
		return Failure[U](r.Err())
	}
	if err := ctx.Err(); err != nil {
		return Failure[U](err)
	}
	return recoverInto(func() Result[U] { return fn(ctx, r.data) }, normalize)
}

// AndThenSync is AndThen for continuations that do not block.
func AndThenSync[T, U any](r Result[T], fn func(T) Result[U], normalize ...Normalizer) Result[U] {
	if !r.ok {
		return Failure[U](r.Err())
	}
	return recoverInto(func() Result[U] { return fn(r.data) }, normalize)
}

func recoverInto[U any](fn func() Result[U], normalize []Normalizer) (res Result[U]) {
	defer func() {
		if p := recover(); p != nil {
			res = Failure[U](panicNormalizer(pick(normalize))(p))
		}
	}()
	return fn()
}

// MapError transforms the error channel only.
// A panic raised by fn propagates to the caller.
func MapError[T any](r Result[T], fn func(error) error) Result[T] {
	if r.ok {
		return r
	}
	return Failure[T](fn(r.Err()))
}

// GetOrElse returns the success value or def.
func GetOrElse[T any](r Result[T], def T) T {
	if r.ok {
		return r.data
	}
	return def
}

// GetOrElseL returns the success value or the result of fn applied to the error.
func GetOrElseL[T any](r Result[T], fn func(error) T) T {
	if r.ok {
		return r.data
	}
	return fn(r.Err())
}

// Match folds both branches into a single value.
// Exactly one of onSuccess and onFailure is invoked.
func Match[T, R any](r Result[T], onSuccess func(T) R, onFailure func(error) R) R {
	if r.ok {
		return onSuccess(r.data)
	}
	return onFailure(r.Err())
}
