package summary

import (
	"context"
	"sync"
	"time"
)

// FireFunc はデバウンス期間の満了時に呼ばれる要約実行関数。
type FireFunc func(ctx context.Context, movieID string)

// Debouncer は映画ごとのデバウンスタイマーを管理する。
// コーパス変更のたびにタイマーをリセットし、変更が収まってから
// 1回だけ要約を実行する。実行中の映画への再発火はスキップされ、
// 二重実行は起きない。
type Debouncer struct {
	delay time.Duration
	fire  FireFunc

	mu       sync.Mutex
	timers   map[string]*time.Timer
	inFlight map[string]bool
	closed   bool

	wg sync.WaitGroup
}

// NewDebouncer はDebouncerの新しいインスタンスを生成する。
// delayはコーパス変更から要約実行までの待機時間。
func NewDebouncer(delay time.Duration, fire FireFunc) *Debouncer {
	return &Debouncer{
		delay:    delay,
		fire:     fire,
		timers:   make(map[string]*time.Timer),
		inFlight: make(map[string]bool),
	}
}

// Trigger は指定映画のデバウンスタイマーを開始またはリセットする。
// delay経過前に再度呼ばれた場合、タイマーは最初からやり直しになる。
func (d *Debouncer) Trigger(movieID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if timer, ok := d.timers[movieID]; ok {
		timer.Reset(d.delay)
		return
	}

	d.timers[movieID] = time.AfterFunc(d.delay, func() {
		d.expire(movieID)
	})
}

// ReviewsChanged はレビューコーパスの変更通知を受け取る。
// review.ChangeListenerの実装。
func (d *Debouncer) ReviewsChanged(movieID string) {
	d.Trigger(movieID)
}

// expire はタイマー満了時に要約実行を開始する。
// 同じ映画の要約が実行中の場合は開始せずスキップする。
func (d *Debouncer) expire(movieID string) {
	d.mu.Lock()
	delete(d.timers, movieID)
	if d.closed || d.inFlight[movieID] {
		d.mu.Unlock()
		return
	}
	d.inFlight[movieID] = true
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			d.mu.Lock()
			d.inFlight[movieID] = false
			d.mu.Unlock()
		}()
		d.fire(context.Background(), movieID)
	}()
}

// Close は保留中のタイマーをすべてキャンセルし、以降のTriggerを無効化する。
// 実行中の要約の完了は待機する。
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	for movieID, timer := range d.timers {
		timer.Stop()
		delete(d.timers, movieID)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// PendingCount は保留中のタイマー数を返す。テストで使用する。
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}
