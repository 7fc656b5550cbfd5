// Package diagutil renders source.Diagnostic values for a terminal, using
// the corpus's color and TTY-detection libraries so that piped or
// redirected output degrades to plain text automatically.
package diagutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ProvableHQ/leo/internal/source"
)

// ColorAppropriate reports whether color output should be used for w: only
// when w is an *os.File attached to a terminal (including a Cygwin terminal).
// Piped or redirected output (and any other io.Writer) gets plain text.
func ColorAppropriate(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render writes one formatted block per diagnostic to w: a header line
// ("error[Ennnn]: message"), a framed source snippet with a caret underline,
// and optional help text. Color is selected automatically via
// ColorAppropriate(w); use RenderWith to force a choice (e.g. in tests).
func Render(w io.Writer, mgr *source.Manager, diags []source.Diagnostic) {
	RenderWith(w, mgr, diags, ColorAppropriate(w))
}

// RenderWith is Render with an explicit color choice.
func RenderWith(w io.Writer, mgr *source.Manager, diags []source.Diagnostic, useColor bool) {
	headerColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	locColor := color.New(color.FgCyan)
	helpColor := color.New(color.FgGreen)
	if !useColor {
		color.NoColor = true
		defer func() { color.NoColor = false }()
	}

	for _, d := range diags {
		sev := "error"
		hc := headerColor
		if d.Severity == source.SeverityWarning {
			sev = "warning"
			hc = warnColor
		} else if d.Severity == source.SeverityNote {
			sev = "note"
			hc = locColor
		}
		fmt.Fprintf(w, "%s: %s\n", hc.Sprintf("%s[%s]", sev, d.Code), d.Message)

		path := mgr.Path(d.Primary.File)
		line, col := mgr.LineCol(d.Primary.File, d.Primary.Start)
		fmt.Fprintf(w, "  %s\n", locColor.Sprintf("--> %s:%d:%d", path, line, col))

		lineText := mgr.LineText(d.Primary.File, d.Primary.Start)
		gutter := fmt.Sprintf("%d", line)
		fmt.Fprintf(w, "%s | %s\n", gutter, lineText)

		width := d.Primary.End - d.Primary.Start
		if width < 1 {
			width = 1
		}
		caretLine := strings.Repeat(" ", col-1) + strings.Repeat("^", width)
		fmt.Fprintf(w, "%s | %s\n", strings.Repeat(" ", len(gutter)), hc.Sprint(caretLine))

		for _, sec := range d.Secondary {
			sline, scol := mgr.LineCol(sec.File, sec.Start)
			fmt.Fprintf(w, "  %s\n", locColor.Sprintf("--> %s:%d:%d", mgr.Path(sec.File), sline, scol))
		}

		if d.Help != "" {
			fmt.Fprintf(w, "  %s\n", helpColor.Sprintf("help: %s", d.Help))
		}
		fmt.Fprintln(w)
	}
}
