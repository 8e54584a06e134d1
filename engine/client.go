package engine

import (
	"context"

	"code.vegaprotocol.io/venue/types"
)

// Submitter is anything able to queue commands, usually a *Loop.
type Submitter interface {
	Submit(ctx context.Context, cmd Command) error
}

// Client wraps a Submitter with blocking calls, each using its own one
// shot reply channel.
type Client struct {
	submitter Submitter
}

func NewClient(s Submitter) *Client {
	return &Client{submitter: s}
}

func (c *Client) Execute(ctx context.Context, sub types.OrderSubmission) (types.OrderStatus, error) {
	reply := make(chan Result, 1)
	return c.do(ctx, NewExecute(sub, reply), reply)
}

func (c *Client) Status(ctx context.Context, id types.OrderID) (types.OrderStatus, error) {
	reply := make(chan Result, 1)
	return c.do(ctx, NewStatus(id, reply), reply)
}

func (c *Client) Cancel(ctx context.Context, id types.OrderID) (types.OrderStatus, error) {
	reply := make(chan Result, 1)
	return c.do(ctx, NewCancel(id, reply), reply)
}

func (c *Client) do(ctx context.Context, cmd Command, reply <-chan Result) (types.OrderStatus, error) {
	if err := c.submitter.Submit(ctx, cmd); err != nil {
		return types.OrderStatus{}, err
	}
	select {
	case res := <-reply:
		return res.Status, res.Err
	case <-ctx.Done():
		return types.OrderStatus{}, ctx.Err()
	}
}
