// Package console prints user notices to a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := fmt.Fprintf(n.out, "! %s\n", message); err != nil {
		return fmt.Errorf("writing notice: %w", err)
	}
	return nil
}
