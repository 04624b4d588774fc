package players

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minaorangina/flip7/deck"
	"github.com/minaorangina/flip7/protocol"
	"github.com/sirupsen/logrus"
)

var ErrBotPanicked = errors.New("bot panicked")

// Status describes how a sandboxed call ended
type Status int

const (
	Returned Status = iota
	TimedOut
	Panicked
	Cancelled
)

var statusNames = []string{"returned", "timed out", "panicked", "cancelled"}

func (s Status) String() string {
	return statusNames[s]
}

// Outcome is the result of a sandboxed call.
// Value is only meaningful when Status is Returned.
type Outcome[T any] struct {
	Value  T
	Status Status
	Err    error
}

func (o Outcome[T]) OK() bool {
	return o.Status == Returned
}

// Call runs fn on its own goroutine and waits at most timeout for it.
// A call that overruns is abandoned, not stopped: its result is dropped.
// There is always a deadline: a timeout <= 0 expires at once.
func Call[T any](ctx context.Context, timeout time.Duration, fn func() T) Outcome[T] {
	ch := make(chan Outcome[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- Outcome[T]{Status: Panicked, Err: fmt.Errorf("%w: %v", ErrBotPanicked, r)}
			}
		}()
		ch <- Outcome[T]{Value: fn(), Status: Returned}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-ch:
		return o
	case <-timer.C:
		return Outcome[T]{Status: TimedOut}
	case <-ctx.Done():
		return Outcome[T]{Status: Cancelled, Err: ctx.Err()}
	}
}

// Sandbox wraps every call into a Bot with a deadline
type Sandbox struct {
	bot     Bot
	timeout time.Duration
	logger  logrus.FieldLogger
}

func NewSandbox(bot Bot, timeout time.Duration, logger logrus.FieldLogger) *Sandbox {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Sandbox{
		bot:     bot,
		timeout: timeout,
		logger:  logger.WithField("bot", bot.Name()),
	}
}

func (s *Sandbox) Name() string {
	return s.bot.Name()
}

func (s *Sandbox) Timeout() time.Duration {
	return s.timeout
}

func (s *Sandbox) HitOrPass(ctx context.Context, dc protocol.DecisionContext) Outcome[protocol.Decision] {
	o := Call(ctx, s.timeout, func() protocol.Decision {
		return s.bot.DecideHitOrPass(dc)
	})
	s.report("hit_or_pass", o.Status, o.Err)
	return o
}

func (s *Sandbox) UseSecondChance(ctx context.Context, dc protocol.DecisionContext, duplicate deck.NumberCard) Outcome[bool] {
	o := Call(ctx, s.timeout, func() bool {
		return s.bot.DecideUseSecondChance(dc, duplicate)
	})
	s.report("second_chance", o.Status, o.Err)
	return o
}

func (s *Sandbox) ActionTarget(ctx context.Context, dc protocol.DecisionContext, action deck.Action, eligible []string) Outcome[string] {
	offered := make([]string, len(eligible))
	copy(offered, eligible)

	o := Call(ctx, s.timeout, func() string {
		return s.bot.ChooseActionTarget(dc, action, offered)
	})
	s.report("action_target", o.Status, o.Err)
	return o
}

func (s *Sandbox) report(decision string, status Status, err error) {
	if status == Returned {
		return
	}

	entry := s.logger.WithFields(logrus.Fields{
		"decision": decision,
		"status":   status.String(),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("bot decision fell back")
}
