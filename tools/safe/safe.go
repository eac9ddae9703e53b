package safe

import (
	"FitProject/logger"
)

// Go starts a goroutine that recovers from panics so a misbehaving
// connection worker cannot take the whole gateway down.
func Go(f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("[safe] panic recovered: %v", r)
			}
		}()
		f()
	}()
}
