package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/steezeapp/steeze-backend/internal/logger"
)

// SafeGo запускает горутину с перехватом panic. Паника логируется,
// процесс продолжает работу.
func SafeGo(fn func()) {
	go func() {
		defer logPanic()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и перехватом panic.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer logPanic()
		fn(ctx)
	}()
}

func logPanic() {
	if r := recover(); r != nil {
		if logger.Log != nil {
			logger.Log.Errorf("goroutine: panic: %v\n%s", r, debug.Stack())
		}
	}
}
