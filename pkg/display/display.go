// Package display redraws a status block on a terminal at a fixed interval.
package display

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

type Displayer interface {
	// Display writes the current status to w and returns false when
	// there is nothing more to show.
	Display(w io.Writer) bool
}

type Display struct {
	live     *uilive.Writer
	interval time.Duration
	updater  Displayer
	buffer   bytes.Buffer
	close    chan struct{}
	once     sync.Once
	done     sync.WaitGroup
}

func New(updater Displayer, interval time.Duration, w io.Writer) *Display {
	live := uilive.New()
	live.Out = w
	return &Display{
		live:     live,
		interval: interval,
		updater:  updater,
		close:    make(chan struct{}),
	}
}

func (d *Display) update() bool {
	d.buffer.Reset()
	cont := d.updater.Display(&d.buffer)
	// Ignore any errors.
	_, _ = io.Copy(d.live, &d.buffer)
	_ = d.live.Flush()
	return cont
}

// Start runs Run in its own goroutine.
func (d *Display) Start() {
	d.done.Add(1)
	go func() {
		defer d.done.Done()
		d.Run()
	}()
}

// Run redraws until Close is called or the Displayer returns false.
func (d *Display) Run() {
	for d.update() {
		select {
		case <-d.close:
			return
		case <-time.After(d.interval):
		}
	}
}

// Close stops a started display and draws the final status.
func (d *Display) Close() {
	d.once.Do(func() { close(d.close) })
	d.done.Wait()
	d.update()
}
