package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"verbatim/internal/review"
	"verbatim/internal/services"
	"verbatim/internal/textdiff"
	"verbatim/internal/textutil"
)

const contextWords = 6

var (
	insertColors = text.Colors{text.FgGreen, text.Bold}
	deleteColors = text.Colors{text.FgRed, text.CrossedOut}
	dimColors    = text.Colors{text.Faint}
	promptColors = text.Colors{text.FgCyan}
)

func shouldColorize(writer io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func isInteractive(reader io.Reader) bool {
	file, ok := reader.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd())
}

func formatInsert(s string, colorize bool) string {
	if colorize {
		return insertColors.Sprint(s)
	}
	return "{+" + s + "+}"
}

func formatDelete(s string, colorize bool) string {
	if colorize {
		return deleteColors.Sprint(s)
	}
	return "[-" + s + "-]"
}

// renderSegments prints the whole diff inline.
func renderSegments(segments []textdiff.Segment, colorize bool) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case textdiff.Equal:
			b.WriteString(seg.Text)
		case textdiff.Insert:
			b.WriteString(formatInsert(seg.Text, colorize))
		case textdiff.Delete:
			b.WriteString(formatDelete(seg.Text, colorize))
		}
	}
	return b.String()
}

// renderUnit prints one pending change with a little surrounding text.
func renderUnit(segments []textdiff.Segment, unit review.Unit, colorize bool) string {
	before := ""
	if unit.Index > 0 && segments[unit.Index-1].Kind == textdiff.Equal {
		before = textutil.LastWords(segments[unit.Index-1].Text, contextWords)
	}
	next := unit.Index + 1
	if unit.Kind == review.UnitSubstitution {
		next++
	}
	after := ""
	if next < len(segments) && segments[next].Kind == textdiff.Equal {
		words := textutil.WordTexts(segments[next].Text)
		if len(words) > contextWords {
			words = words[:contextWords]
		}
		after = strings.Join(words, " ")
	}

	var change string
	switch unit.Kind {
	case review.UnitSubstitution:
		change = formatDelete(unit.Original, colorize) + formatInsert(unit.Revised, colorize)
	case review.UnitDelete:
		change = formatDelete(unit.Original, colorize)
	default:
		change = formatInsert(unit.Revised, colorize)
	}

	parts := make([]string, 0, 3)
	if before != "" {
		parts = append(parts, maybeColor(dimColors, "…"+before, colorize))
	}
	parts = append(parts, change)
	if after != "" {
		parts = append(parts, maybeColor(dimColors, after+"…", colorize))
	}
	return strings.Join(parts, " ")
}

func maybeColor(colors text.Colors, s string, colorize bool) string {
	if colorize {
		return colors.Sprint(s)
	}
	return s
}

// terminalRenderer asks the operator about each change on a line-oriented
// terminal.
type terminalRenderer struct {
	in       *bufio.Reader
	out      io.Writer
	colorize bool
}

func newTerminalRenderer(in io.Reader, out io.Writer, colorize bool) *terminalRenderer {
	return &terminalRenderer{in: bufio.NewReader(in), out: out, colorize: colorize}
}

type decision int

const (
	decideAccept decision = iota
	decideReject
)

// Render collects one decision per unit in document order, then applies them
// from the last segment to the first.
func (r *terminalRenderer) Render(segments []textdiff.Segment, onAccept, onReject func(int) error) error {
	units := review.Units(segments)
	decisions := make(map[int]decision, len(units))
	var rest *decision

	for n, unit := range units {
		if rest != nil {
			decisions[unit.Index] = *rest
			continue
		}
		fmt.Fprintf(r.out, "\n[%d/%d] %s\n  %s\n", n+1, len(units), unit.Kind, renderUnit(segments, unit, r.colorize))
		for {
			fmt.Fprint(r.out, maybeColor(promptColors, "  accept (a), reject (r), accept rest (A), reject rest (R), quit (q)? ", r.colorize))
			line, err := r.in.ReadString('\n')
			answer := strings.TrimSpace(line)
			if err != nil && answer == "" {
				if err == io.EOF {
					return services.Wrap(services.ErrCanceled, "review", "render", "input closed before all changes were decided", nil)
				}
				return fmt.Errorf("read answer: %w", err)
			}
			chosen, all, ok := parseAnswer(answer)
			if answer == "q" || answer == "quit" {
				return services.Wrap(services.ErrCanceled, "review", "render", "review abandoned", nil)
			}
			if !ok {
				fmt.Fprintln(r.out, "  please answer a, r, A, R, or q")
				continue
			}
			decisions[unit.Index] = chosen
			if all {
				rest = &chosen
			}
			break
		}
	}

	indices := make([]int, 0, len(decisions))
	for idx := range decisions {
		indices = append(indices, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	for _, idx := range indices {
		apply := onAccept
		if decisions[idx] == decideReject {
			apply = onReject
		}
		if err := apply(idx); err != nil {
			return err
		}
	}
	return nil
}

func parseAnswer(answer string) (decision, bool, bool) {
	switch answer {
	case "a", "y", "accept":
		return decideAccept, false, true
	case "r", "n", "reject":
		return decideReject, false, true
	case "A":
		return decideAccept, true, true
	case "R":
		return decideReject, true, true
	default:
		return decideAccept, false, false
	}
}
