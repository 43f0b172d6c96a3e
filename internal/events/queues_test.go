package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdminQueue_DrainEmptyIsNoop(t *testing.T) {
	var q AdminQueue
	assert.Nil(t, q.DrainLastWriteWins())
}

func TestAdminQueue_LastWriteWinsPerScooter(t *testing.T) {
	var q AdminQueue
	now := time.Now()
	q.Enqueue(1, "needService", now)
	q.Enqueue(2, "available", now)
	q.Enqueue(1, "deactivated", now.Add(time.Second))

	out := q.DrainLastWriteWins()
	assert.Len(t, out, 2)

	byID := map[int]AdminStatusUpdate{}
	for _, u := range out {
		byID[u.ScooterID] = u
	}
	assert.Equal(t, "deactivated", byID[1].NewStatus)
	assert.Equal(t, "available", byID[2].NewStatus)
}

func TestAdminQueue_DrainIsIdempotentlyEmptyAfter(t *testing.T) {
	var q AdminQueue
	q.Enqueue(1, "onService", time.Now())
	_ = q.DrainLastWriteWins()
	assert.Nil(t, q.DrainLastWriteWins())
}

func TestAdminQueue_ConcurrentEnqueue(t *testing.T) {
	var q AdminQueue
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.Enqueue(id, "available", time.Now())
		}(i)
	}
	wg.Wait()

	out := q.DrainLastWriteWins()
	assert.Len(t, out, 100)
}

func TestRentalEventQueue_LastWriteWinsPerScooter(t *testing.T) {
	var q RentalEventQueue
	q.Enqueue(RentalEvent{Type: RentalStarted, ScooterID: 1, RentalID: "r1"})
	q.Enqueue(RentalEvent{Type: RentalEnded, ScooterID: 1, RentalID: "r1"})

	out := q.DrainLastWriteWins()
	assert.Len(t, out, 1)
	assert.Equal(t, RentalEnded, out[0].Type)
}

func TestRentalEventQueue_DrainEmptyIsNoop(t *testing.T) {
	var q RentalEventQueue
	assert.Nil(t, q.DrainLastWriteWins())
}
