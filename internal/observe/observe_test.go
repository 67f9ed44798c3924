package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventDeliversInSubscriptionOrder(t *testing.T) {
	var e Event[int]
	var got []string

	e.Subscribe(func(v int) { got = append(got, "a") })
	e.Subscribe(func(v int) { got = append(got, "b") })
	e.Emit(1)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestEventUnsubscribe(t *testing.T) {
	var e Event[string]
	calls := 0

	unsubscribe := e.Subscribe(func(string) { calls++ })
	e.Emit("x")
	unsubscribe()
	unsubscribe()
	e.Emit("y")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.Len())
}

func TestEventSubscribeDuringEmit(t *testing.T) {
	var e Event[int]
	late := 0

	e.Subscribe(func(int) {
		e.Subscribe(func(int) { late++ })
	})
	e.Emit(1)
	assert.Equal(t, 0, late, "subscriber added during emit must not see that emit")

	e.Emit(2)
	assert.Equal(t, 1, late)
}

func TestEventUnsubscribeDuringEmit(t *testing.T) {
	var e Event[int]
	var second int
	var unsubscribeSecond func()

	e.Subscribe(func(int) { unsubscribeSecond() })
	unsubscribeSecond = e.Subscribe(func(int) { second++ })

	e.Emit(1)
	e.Emit(2)

	assert.Equal(t, 1, second)
}

func TestEventClear(t *testing.T) {
	var e Event[Change[int]]
	e.Subscribe(func(Change[int]) {})
	e.Subscribe(func(Change[int]) {})
	e.Clear()
	assert.Equal(t, 0, e.Len())
}
