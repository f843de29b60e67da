package result

import "context"

// TryCatch runs fn and converts its outcome into a Result.
// Returned errors and recovered panics become failures.
func TryCatch[T any](ctx context.Context, fn func(context.Context) (T, error), normalize ...Normalizer) Result[T] {
	return TryCatchSync(func() (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx)
	}, normalize...)
}

// TryCatchSync is TryCatch without a context.
func TryCatchSync[T any](fn func() (T, error), normalize ...Normalizer) (res Result[T]) {
	norm := pick(normalize)

	defer func() {
		if p := recover(); p != nil {
			res = Failure[T](panicNormalizer(norm)(p))
		}
	}()

	data, err := fn()
	if err != nil {
		return Failure[T](norm(err))
	}
	return Success(data)
}

func pick(normalize []Normalizer) Normalizer {
	if len(normalize) > 0 && normalize[0] != nil {
		return normalize[0]
	}
	return NewErrorInfo
}
