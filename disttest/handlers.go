package disttest

import "github.com/iov-one/tokendist"

// calls counts how often a mock was run in each mode.
type calls struct {
	check, deliver int
}

func (c *calls) CheckCallCount() int { return c.check }

func (c *calls) DeliverCallCount() int { return c.deliver }

func (c *calls) CallCount() int { return c.check + c.deliver }

// Handler is a mock handler returning the configured result or error.
// A non nil Key is written with Value first, even when an error is
// returned, so tests can see whether the write survived.
type Handler struct {
	calls

	CheckResult tokendist.CheckResult
	CheckErr    error

	DeliverResult tokendist.DeliverResult
	DeliverErr    error

	Key   []byte
	Value []byte
}

var _ tokendist.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.CheckResult, error) {
	h.check++
	if err := h.write(db, h.CheckErr); err != nil {
		return nil, err
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx) (*tokendist.DeliverResult, error) {
	h.deliver++
	if err := h.write(db, h.DeliverErr); err != nil {
		return nil, err
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) write(db tokendist.KVStore, fail error) error {
	if h.Key != nil {
		if err := db.Set(h.Key, h.Value); err != nil {
			return err
		}
	}
	return fail
}

// Decorator is a mock decorator that fails with the configured error or
// calls the next handler.
type Decorator struct {
	calls

	CheckErr   error
	DeliverErr error
}

var _ tokendist.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx, next tokendist.Checker) (*tokendist.CheckResult, error) {
	d.check++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx, next tokendist.Deliverer) (*tokendist.DeliverResult, error) {
	d.deliver++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}
