package jsonskema

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Render writes one line per recorded assertion. Outcomes are colored only
// when w is a terminal.
func (r *Results) Render(w io.Writer) error {
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed, color.Bold)
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		pass.EnableColor()
		fail.EnableColor()
	} else {
		pass.DisableColor()
		fail.DisableColor()
	}
	var err error
	r.walk(func(pointer, schemaURI, keyword string, ok bool) {
		if err != nil {
			return
		}
		outcome := pass.Sprint("pass")
		if !ok {
			outcome = fail.Sprint("FAIL")
		}
		if pointer == "" {
			pointer = "/"
		}
		_, err = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", outcome, pointer, keyword, schemaURI)
	})
	return err
}
