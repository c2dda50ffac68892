// Copyright 2025 The GeoCluster Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/spatialvision/geocluster/cluster"
)

// newCmdProgress builds the progress sink for a command run: a progress bar
// when stderr is a terminal, plain log lines otherwise.
func newCmdProgress(description string) cluster.Progress {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return &barProgress{
			bar: progressbar.NewOptions(100,
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			),
		}
	}

	return logProgress{}
}

type barProgress struct {
	bar *progressbar.ProgressBar
}

func (p *barProgress) SetPercentage(pct int) {
	_ = p.bar.Set(pct)
}

func (p *barProgress) Info(msg string) {
	p.bar.Describe(msg)
}

func (p *barProgress) Error(msg string) {
	_ = p.bar.Clear()
	log.Printf("⚠️  %s", msg)
}

type logProgress struct{}

func (logProgress) SetPercentage(int) {}

func (logProgress) Info(msg string) {
	log.Println(msg)
}

func (logProgress) Error(msg string) {
	log.Printf("⚠️  %s", msg)
}
