package signals

import (
	"os"
	"os/signal"
	"syscall"
)

// OnSignal invokes the given action once the process receives an interrupt or a termination signal.
func OnSignal(action func(sig os.Signal)) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-ch
		action(sig)
	}()
}
