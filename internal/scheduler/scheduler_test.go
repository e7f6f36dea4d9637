package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("условие не выполнилось за отведённое время")
}

func TestScheduler_RunsOnStartAndByTicker(t *testing.T) {
	var runs int64

	s := New(2, 16)
	s.Add(Job{
		Name:     "counter",
		Interval: 20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt64(&runs, 1)
			return nil
		},
	})

	s.Start(context.Background())
	defer s.Stop()

	// первый запуск происходит сразу, не дожидаясь тикера
	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&runs) >= 1 })
	// дальше задача повторяется по интервалу
	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&runs) >= 3 })
}

func TestScheduler_PanicDoesNotKillWorker(t *testing.T) {
	var runs int64

	s := New(1, 16)
	s.Add(Job{
		Name:     "panicking",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			panic("что-то пошло не так")
		},
	})
	s.Add(Job{
		Name:     "healthy",
		Interval: 20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt64(&runs, 1)
			return nil
		},
	})

	s.Start(context.Background())
	defer s.Stop()

	// единственный воркер пережил панику и продолжает выполнять задачи
	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&runs) >= 2 })
}

func TestScheduler_ErrorDoesNotStopSchedule(t *testing.T) {
	var runs int64

	s := New(1, 16)
	s.Add(Job{
		Name:     "failing",
		Interval: 20 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt64(&runs, 1)
			return errors.New("ошибка задачи")
		},
	})

	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&runs) >= 2 })
}

func TestScheduler_StopWaitsForGoroutines(t *testing.T) {
	var runs int64

	s := New(2, 16)
	s.Add(Job{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt64(&runs, 1)
			return nil
		},
	})

	s.Start(context.Background())
	waitFor(t, time.Second, func() bool { return atomic.LoadInt64(&runs) >= 1 })
	s.Stop()

	// после Stop новые запуски не происходят
	after := atomic.LoadInt64(&runs)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt64(&runs))
}
