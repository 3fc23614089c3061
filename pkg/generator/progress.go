package generator

import "sync"

// ProgressFunc はバッチ内の試行ごとの進捗 (0〜100) を受け取ります。集約はしません。
type ProgressFunc func(index, percent int)

// progressTracker は試行ごとに単調非減少の進捗だけを転送し、最後に必ず 100 を1回だけ通知します。
type progressTracker struct {
	mu   sync.Mutex
	fn   ProgressFunc
	last []int
	done []bool
}

func newProgressTracker(n int, fn ProgressFunc) *progressTracker {
	last := make([]int, n)
	for i := range last {
		last[i] = -1
	}
	return &progressTracker{fn: fn, last: last, done: make([]bool, n)}
}

// report は値を 0〜100 に丸め、前回値未満や完了後の通知を捨てます。
func (p *progressTracker) report(index, percent int) {
	if p.fn == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 99 {
		// 100 は finish だけが通知する
		percent = 99
	}

	p.mu.Lock()
	if p.done[index] || percent <= p.last[index] {
		p.mu.Unlock()
		return
	}
	p.last[index] = percent
	fn := p.fn
	p.mu.Unlock()

	fn(index, percent)
}

func (p *progressTracker) finish(index int) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	if p.done[index] {
		p.mu.Unlock()
		return
	}
	p.done[index] = true
	p.last[index] = 100
	fn := p.fn
	p.mu.Unlock()

	fn(index, 100)
}

func (p *progressTracker) forAttempt(index int) func(int) {
	return func(percent int) { p.report(index, percent) }
}
