// Copyright 2026 The Wengert Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/wengert/wengert/calculus"
)

// runBench times n evaluations of the field in three phases: primal-only
// with recording off, gradient, and full Hessian.
func runBench(f demoField, at []float64, n int) {
	point := realVec(at)
	phases := []struct {
		name string
		fn   func()
	}{
		{"primal, recording off", func() {
			calculus.Value(f.field, point)
		}},
		{"gradient", func() {
			if _, _, err := calculus.Gradient(f.field, point); err != nil {
				klog.Fatalf("gradient benchmark: %+v", err)
			}
		}},
		{"hessian, edge pushing", func() {
			if _, _, _, err := calculus.Hessian(f.field, point); err != nil {
				klog.Fatalf("hessian benchmark: %+v", err)
			}
		}},
	}

	fmt.Println(titleStyle.Render("Benchmark"))
	out := termenv.NewOutput(os.Stdout)
	out.HideCursor()
	defer out.ShowCursor()

	table := newPlainTable(true, lipgloss.Left, lipgloss.Right, lipgloss.Right, lipgloss.Right)
	table.Headers("Phase", "Total", "Per eval", "Evals/s")
	for _, phase := range phases {
		bar := progressbar.NewOptions(n,
			progressbar.OptionSetDescription("      [bold]"+phase.name+"[reset] "),
			progressbar.OptionUseANSICodes(true),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("evals"),
			progressbar.OptionSetTheme(progressbar.ThemeUnicode),
		)
		start := time.Now()
		for i := 0; i < n; i++ {
			phase.fn()
			_ = bar.Add(1)
		}
		elapsed := time.Since(start)
		fmt.Println()

		rate := "-"
		if secs := elapsed.Seconds(); secs > 0 {
			rate = humanize.Comma(int64(float64(n) / secs))
		}
		table.Row(phase.name,
			formatDuration(elapsed),
			formatDuration(elapsed/time.Duration(n)),
			rate,
		)
	}
	fmt.Println(table.Render())
}

var durationRE = regexp.MustCompile(`(\d+\.?\d*)([µa-z]+)`)

// formatDuration rounds the leading component of a Duration string to two
// decimals: "12.345678ms" becomes "12.35ms".
func formatDuration(d time.Duration) string {
	matches := durationRE.FindStringSubmatch(d.String())
	if len(matches) != 3 {
		return d.String()
	}
	n, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return d.String()
	}
	return fmt.Sprintf("%.2f%s", n, matches[2])
}
