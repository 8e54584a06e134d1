package engine

import (
	"fmt"

	"code.vegaprotocol.io/venue/matching"
	"code.vegaprotocol.io/venue/types"
)

type CommandType uint8

const (
	CommandExecute CommandType = iota
	CommandStatus
	CommandCancel
	// commandReload swaps the matching configuration from within the loop.
	commandReload
)

func (c CommandType) String() string {
	switch c {
	case CommandExecute:
		return "execute"
	case CommandStatus:
		return "status"
	case CommandCancel:
		return "cancel"
	case commandReload:
		return "reload"
	default:
		return fmt.Sprintf("CommandType(%d)", uint8(c))
	}
}

// Result is the reply to a single command. Err is only set by Status and
// Cancel for ids the engine does not know, Status then holds the matching
// rejection.
type Result struct {
	Status types.OrderStatus
	Err    error
}

// Command is a request to the engine loop. Reply receives exactly one
// Result and belongs to the caller, the loop never closes it.
type Command struct {
	Type       CommandType
	Submission types.OrderSubmission
	OrderID    types.OrderID
	Reply      chan<- Result

	matching matching.Config
}

func NewExecute(sub types.OrderSubmission, reply chan<- Result) Command {
	return Command{Type: CommandExecute, Submission: sub, Reply: reply}
}

func NewStatus(id types.OrderID, reply chan<- Result) Command {
	return Command{Type: CommandStatus, OrderID: id, Reply: reply}
}

func NewCancel(id types.OrderID, reply chan<- Result) Command {
	return Command{Type: CommandCancel, OrderID: id, Reply: reply}
}
