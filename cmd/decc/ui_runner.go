package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"decc/internal/driver"
	"decc/internal/ui"
)

// runWithProgress runs fn in the background and renders its progress
// events to w until fn returns.
func runWithProgress(w io.Writer, title string, files []string, fn func(driver.ProgressSink) collectOutcome) (collectOutcome, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan collectOutcome, 1)

	go func() {
		outcome := fn(driver.ChannelSink{Ch: events})
		close(events)
		outcomeCh <- outcome
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(w))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the producer from blocking on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	return outcome, uiErr
}
