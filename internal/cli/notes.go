package cli

import (
	"fmt"
	"io"

	"github.com/roach88/rollcall/internal/roster"
)

type note struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// notes collects roster notifications for the current command.
type notes struct {
	list []note
}

func (n *notes) Notify(level roster.Level, msg string) {
	n.list = append(n.list, note{Level: level.String(), Message: msg})
}

// lastError returns the most recent error message.
func (n *notes) lastError() string {
	for i := len(n.list) - 1; i >= 0; i-- {
		if n.list[i].Level == roster.LevelError.String() {
			return n.list[i].Message
		}
	}
	return "operation failed"
}

func (n *notes) print(w io.Writer) {
	for _, m := range n.list {
		fmt.Fprintln(w, m.Message)
	}
}
