package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"jsfuzz/internal/driver"
	"jsfuzz/internal/ui"
)

type batchOutcome struct {
	result driver.BatchResult
	err    error
}

func runBatchWithUI(ctx context.Context, out io.Writer, title string, req driver.BatchRequest) (driver.BatchResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		req.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.RunBatch(ctx, req)
		outcomeCh <- batchOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Count, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Keep the batch from blocking on a full channel nobody reads.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
