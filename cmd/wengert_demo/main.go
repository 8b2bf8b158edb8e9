// wengert_demo differentiates a chosen scalar field on a tape and prints
// the value, gradient and Hessian at a point. It can also dump the
// recorded nodes through klog and benchmark repeated evaluations.
//
// Examples:
//
//	wengert_demo -field=rosenbrock
//	wengert_demo -field=himmelblau -at=3,2 -dump -dump_limit=10
//	wengert_demo -field=sphere -bench=100000
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/wengert/wengert/num"
	"github.com/wengert/wengert/tape"
)

var (
	flagField = flag.String("field", "rosenbrock",
		"Scalar field to differentiate. One of: "+strings.Join(fieldNames(), ", ")+".")
	flagAt = flag.String("at", "",
		"Comma-separated evaluation point. Defaults to the field's standard point.")
	flagDump = flag.Bool("dump", false,
		"Log every recorded tape node through klog before the backward sweep.")
	flagDumpLimit = flag.Int("dump_limit", 0,
		"Maximum number of nodes to dump, 0 means all. Only meaningful with -dump.")
	flagBench = flag.Int("bench", 0,
		"Number of repeated evaluations to time per phase, 0 skips the benchmark.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	f, ok := fieldByName(*flagField)
	if !ok {
		klog.Errorf("Unknown field %q, pick one of: %s. See 'wengert_demo -help'.",
			*flagField, strings.Join(fieldNames(), ", "))
		os.Exit(1)
	}
	err := exceptions.TryCatch[error](func() {
		at := f.at
		if *flagAt != "" {
			at = parsePoint(*flagAt)
		}
		if len(at) != len(f.at) {
			exceptions.Panicf("field %q expects %d inputs, got %d in -at=%q",
				f.name, len(f.at), len(at), *flagAt)
		}
		report(f, at)
		if *flagBench > 0 {
			runBench(f, at, *flagBench)
		}
	})
	if err != nil {
		klog.Fatalf("Failed with error: %+v", err)
	}
}

func parsePoint(s string) []float64 {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		out[i] = must.M1(strconv.ParseFloat(strings.TrimSpace(p), 64))
	}
	return out
}

func report(f demoField, at []float64) {
	t := tape.NewHessianTape[num.Real](4 * len(at))
	xs := make([]v, len(at))
	for i, x := range at {
		xs[i] = t.CreateVariable(num.Real(x))
	}
	out := f.field(t, xs)

	if *flagDump {
		t.DumpNodes(context.Background(), klog.Background(), *flagDumpLimit)
	}
	grad, hess := must.M2(t.ReverseAccumulateHessianAt(out.Index(), 1))

	fmt.Println(titleStyle.Render("Field"))
	summary := newPlainTable(false, lipgloss.Right, lipgloss.Left)
	summary.Row("field", f.name)
	summary.Row("f(x)", f.expr)
	summary.Row("point", formatPoint(at))
	summary.Row("value", formatReal(out.Value()))
	summary.Row("variables", humanize.Comma(int64(t.VariableCount())))
	summary.Row("nodes", humanize.Comma(int64(t.NodeCount())))
	fmt.Println(summary.Render())

	fmt.Println(titleStyle.Render("Gradient"))
	gradTable := newPlainTable(true, lipgloss.Center, lipgloss.Right, lipgloss.Right)
	gradTable.Headers("Input", "Value", "Gradient")
	for i, g := range grad {
		gradTable.Row(inputName(i), formatReal(num.Real(at[i])), formatReal(g))
	}
	fmt.Println(gradTable.Render())

	fmt.Println(titleStyle.Render("Hessian"))
	hessTable := newPlainTable(true, lipgloss.Center, lipgloss.Right)
	header := make([]string, len(grad)+1)
	for j := range grad {
		header[j+1] = inputName(j)
	}
	hessTable.Headers(header...)
	for i, row := range hess {
		cells := make([]string, len(row)+1)
		cells[0] = inputName(i)
		for j, h := range row {
			cells[j+1] = formatReal(h)
		}
		hessTable.Row(cells...)
	}
	fmt.Println(hessTable.Render())
}

func inputName(i int) string { return fmt.Sprintf("x%d", i) }

func formatReal(x num.Real) string {
	return strconv.FormatFloat(float64(x), 'g', 6, 64)
}

func formatPoint(at []float64) string {
	parts := make([]string, len(at))
	for i, x := range at {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
