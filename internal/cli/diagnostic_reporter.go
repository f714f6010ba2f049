package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/mvpgen/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	out     io.Writer
	verbose bool
}

// NewDiagnosticReporter creates a reporter writing to out
func NewDiagnosticReporter(out io.Writer, verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{out: out, verbose: verbose}
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	color.New(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err with its code, location, context and suggestions
func (r *DiagnosticReporter) ReportError(err error) {
	var base *errors.BaseError
	if !stderrors.As(err, &base) {
		fmt.Fprintf(r.out, "\nERROR: %s\n\n", err.Error())
		return
	}

	title := errorTitle(base.Code)
	fmt.Fprintf(r.out, "\nERROR: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+7))
	fmt.Fprintf(r.out, "Message: %s\n", base.Message)

	if !base.Loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n", base.Loc.String())
	}
	if base.Cause != nil {
		fmt.Fprintf(r.out, "Cause: %s\n", base.Cause.Error())
	}
	if r.verbose && len(base.ContextData) > 0 {
		r.printContext(base.ContextData)
	}

	suggestions := collectSuggestions(err)
	if len(suggestions) > 0 {
		fmt.Fprintf(r.out, "\nSuggestions:\n")
		for _, s := range suggestions {
			fmt.Fprintf(r.out, "  - %s\n", s)
		}
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "\nContext:\n")
	for _, k := range keys {
		fmt.Fprintf(r.out, "  %s: %v\n", k, context[k])
	}
}

// collectSuggestions gathers suggestions along the whole cause chain
func collectSuggestions(err error) []string {
	seen := make(map[string]bool)
	var out []string
	for err != nil {
		if base, ok := err.(*errors.BaseError); ok {
			for _, s := range base.Hints {
				if !seen[s] {
					seen[s] = true
					out = append(out, s)
				}
			}
		}
		err = stderrors.Unwrap(err)
	}
	return out
}

func errorTitle(code errors.ErrorCode) string {
	switch code {
	case errors.SyntaxErrorCode:
		return "Syntax Error"
	case errors.ContextErrorCode:
		return "Invocation Context Error"
	case errors.ConfigurationErrorCode:
		return "Configuration Error"
	case errors.GenerationErrorCode:
		return "Generation Error"
	case errors.TemplateErrorCode:
		return "Template Error"
	case errors.FileSystemErrorCode:
		return "File System Error"
	case errors.TransactionErrorCode:
		return "Transaction Error"
	default:
		return "Unknown Error"
	}
}
