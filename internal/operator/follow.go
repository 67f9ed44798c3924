package operator

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type followTask struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// FollowLeader starts copying the leader's time into the operator until
// StopFollowingLeader, CloseDocument or another FollowLeader call. It
// returns false when there is no leader.
func (o *Operator) FollowLeader() bool {
	o.mu.Lock()
	leader := o.leader
	if leader == nil {
		o.mu.Unlock()
		return false
	}
	if o.following != nil {
		o.following.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	task := &followTask{id: uuid.NewString(), cancel: cancel, done: make(chan struct{})}
	o.following = task
	o.mu.Unlock()

	go o.follow(ctx, task, leader)
	return true
}

// StopFollowingLeader cancels the follow task. Calling it when nothing is
// followed is a no-op.
func (o *Operator) StopFollowingLeader() {
	o.mu.Lock()
	task := o.following
	o.following = nil
	o.mu.Unlock()

	if task != nil {
		task.cancel()
	}
}

// Following reports whether a follow task is active.
func (o *Operator) Following() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.following != nil
}

func (o *Operator) isFollowing(task *followTask) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.following == task
}

func (o *Operator) follow(ctx context.Context, task *followTask, leader Synchronized) {
	defer close(task.done)
	logger := o.logger.With("follow_id", task.id)
	logger.Debugw("Following leader")

	var tick <-chan time.Time
	if o.followInterval > 0 {
		ticker := time.NewTicker(o.followInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				logger.Debugw("Stopped following leader")
				return
			case <-tick:
			}
		} else if ctx.Err() != nil {
			logger.Debugw("Stopped following leader")
			return
		}

		// the identity check runs on the UI goroutine after the leader is
		// read, so a task stopped or replaced by that read (end of media
		// pausing the player) never publishes another value
		superseded := false
		err := o.dispatcher.Dispatch(ctx, func() {
			at := leader.CurrentTime()
			if !o.isFollowing(task) {
				superseded = true
				return
			}
			o.SetCurrentTime(at, leader)
		})
		if err != nil || superseded {
			logger.Debugw("Stopped following leader", "error", err)
			return
		}
	}
}
