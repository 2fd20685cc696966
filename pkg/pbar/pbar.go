// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package pbar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ostafen/sdfat/pkg/util/format"
)

// MinRefreshRate throttles non-forced renders.
const MinRefreshRate = time.Millisecond * 500

const barLength = 20

// ProgressBarState tracks a multi-file copy and renders it on a single
// terminal line.
type ProgressBarState struct {
	out io.Writer

	TotalBytes         int64
	ProcessedBytes     int64
	TotalFiles         int
	FilesDone          int
	StartTime          time.Time
	LastUpdateTime     time.Time
	LastProcessedBytes int64
}

func NewProgressBarState(out io.Writer, totalBytes int64, totalFiles int) *ProgressBarState {
	return &ProgressBarState{
		out:            out,
		TotalBytes:     totalBytes,
		TotalFiles:     totalFiles,
		StartTime:      time.Now(),
		LastUpdateTime: time.Unix(0, 0),
	}
}

// Add accounts n more processed bytes and renders if the refresh interval elapsed.
func (pbs *ProgressBarState) Add(n int64) {
	pbs.ProcessedBytes += n
	pbs.Render(false)
}

// Percentage returns the share of processed bytes. An empty job is complete.
func (pbs *ProgressBarState) Percentage() float64 {
	if pbs.TotalBytes <= 0 {
		return 100
	}
	return float64(pbs.ProcessedBytes) / float64(pbs.TotalBytes) * 100
}

// Render prints the progress line, overwriting the previous one.
func (pbs *ProgressBarState) Render(force bool) {
	if !force && time.Since(pbs.LastUpdateTime) < MinRefreshRate {
		return
	}

	percentage := pbs.Percentage()
	elapsed := time.Since(pbs.LastUpdateTime).Seconds()
	speed := float64(pbs.ProcessedBytes-pbs.LastProcessedBytes) / elapsed

	pbs.LastUpdateTime = time.Now()
	pbs.LastProcessedBytes = pbs.ProcessedBytes

	// Trailing blanks clear leftovers of a longer previous line.
	fmt.Fprintf(pbs.out, "\r[INFO] Progress: [%s] %3.0f%% (%s/%s) | Files: %d/%d | @ %.2fMB/s [%s]    ",
		renderBar(percentage),
		percentage,
		format.FormatBytes(pbs.ProcessedBytes),
		format.FormatBytes(pbs.TotalBytes),
		pbs.FilesDone,
		pbs.TotalFiles,
		speed/(1024*1024),
		pbs.eta(speed))
}

func renderBar(percentage float64) string {
	filled := min(int(float64(barLength)*percentage/100), barLength)
	if filled == barLength {
		return strings.Repeat("=", barLength)
	}
	return strings.Repeat("=", filled) + ">" + strings.Repeat(" ", barLength-filled-1)
}

func (pbs *ProgressBarState) eta(bytesPerSec float64) string {
	if pbs.ProcessedBytes <= 0 || bytesPerSec <= 0 {
		return "calculating..."
	}

	secs := int(float64(pbs.TotalBytes-pbs.ProcessedBytes) / bytesPerSec)
	return fmt.Sprintf("%02d:%02d:%02d remaining", secs/3600, secs/60%60, secs%60)
}

// Finish ends the progress line.
func (pbs *ProgressBarState) Finish() {
	fmt.Fprintln(pbs.out)
}
