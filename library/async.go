package library

// Result carries the outcome of a background read.
type Result[T any] struct {
	Value T
	Err   error
}

// fetchAsync runs fn in its own goroutine and delivers the outcome on a
// one-slot channel. Fire-and-forget: there is no cancellation token, and the
// buffer lets the goroutine finish even if nobody ever receives.
func fetchAsync[T any](fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		v, err := fn()
		ch <- Result[T]{Value: v, Err: err}
		close(ch)
	}()
	return ch
}
