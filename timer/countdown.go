// Package timer содержит обратный отсчёт турнира.
package timer

import (
	"sync"
	"time"

	"github.com/Dosada05/esports-arena/models"
	"github.com/jonboulle/clockwork"
)

// TickFunc получает оставшиеся секунды и флаг работы на каждом тике.
// Вызывается из горутины отсчёта; вызывать из неё Stop или Reset нельзя.
type TickFunc func(remaining int, running bool)

// Countdown тикает раз в секунду, пока running и remaining > 0.
// На нуле переключает running в false и останавливается.
type Countdown struct {
	clock  clockwork.Clock
	onTick TickFunc

	// control сериализует Reset и Stop целиком; mu защищает состояние отсчёта.
	control   sync.Mutex
	mu        sync.Mutex
	remaining int
	running   bool
	stop      chan struct{}
	done      chan struct{}
}

func NewCountdown(clock clockwork.Clock, remaining int, running bool, onTick TickFunc) *Countdown {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	c := &Countdown{clock: clock, onTick: onTick}
	c.Reset(remaining, running)
	return c
}

// Reset полностью пересинхронизирует отсчёт: прежний цикл останавливается, запускается новый.
func (c *Countdown) Reset(remaining int, running bool) {
	c.control.Lock()
	defer c.control.Unlock()
	c.stopLoop()

	if remaining < 0 {
		remaining = 0
	}
	c.mu.Lock()
	c.remaining = remaining
	c.running = running && remaining > 0
	if !c.running {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	c.stop, c.done = stop, done
	ticker := c.clock.NewTicker(time.Second)
	c.mu.Unlock()

	go c.loop(ticker, stop, done)
}

func (c *Countdown) loop(ticker clockwork.Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			c.mu.Lock()
			select {
			case <-stop:
				c.mu.Unlock()
				return
			default:
			}
			c.remaining--
			if c.remaining <= 0 {
				c.remaining = 0
				c.running = false
			}
			remaining, running := c.remaining, c.running
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(remaining, running)
			}
			if !running {
				return
			}
		}
	}
}

// Stop останавливает цикл тиков. Повторный вызов безопасен.
func (c *Countdown) Stop() {
	c.control.Lock()
	defer c.control.Unlock()
	c.stopLoop()
}

func (c *Countdown) stopLoop() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// RemainingFor считает оставшиеся секунды по сохранённым полям таймера турнира.
func RemainingFor(t *models.Tournament, now time.Time) int {
	if t == nil || t.TimerDuration == nil || *t.TimerDuration <= 0 {
		return 0
	}
	duration := *t.TimerDuration
	if !t.TimerIsRunning || t.TimerStartTime == nil {
		return duration
	}
	elapsed := int(now.Sub(*t.TimerStartTime) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if remaining := duration - elapsed; remaining > 0 {
		return remaining
	}
	return 0
}
