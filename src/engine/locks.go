package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// tickerLocks hands out one FIFO mutex per ticker. Entries are dropped once no
// goroutine holds or waits on them, so the map stays bounded by in-flight tickers.
type tickerLocks struct {
	mu    sync.Mutex
	locks map[string]*tickerLock
}

type tickerLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newTickerLocks() *tickerLocks {
	return &tickerLocks{locks: make(map[string]*tickerLock)}
}

// acquire blocks until the ticker is free or ctx is done. The returned release
// func is safe to call more than once.
func (l *tickerLocks) acquire(ctx context.Context, ticker string) (func(), error) {
	l.mu.Lock()
	tl, ok := l.locks[ticker]
	if !ok {
		tl = &tickerLock{sem: semaphore.NewWeighted(1)}
		l.locks[ticker] = tl
	}
	tl.refs++
	l.mu.Unlock()

	if err := tl.sem.Acquire(ctx, 1); err != nil {
		l.unref(ticker, tl)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			tl.sem.Release(1)
			l.unref(ticker, tl)
		})
	}, nil
}

func (l *tickerLocks) unref(ticker string, tl *tickerLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tl.refs--
	if tl.refs == 0 {
		delete(l.locks, ticker)
	}
}

func (l *tickerLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
