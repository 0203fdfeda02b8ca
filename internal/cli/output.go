package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"fittrack/internal/client"
	"fittrack/internal/domain"
	"fittrack/internal/offline"
)

// errLocalStore marks failures of the on-disk queue.
var errLocalStore = errors.New("local store")

// isUserError reports whether err was caused by input or account state rather
// than by the environment.
func isUserError(err error) bool {
	return !errors.Is(err, client.ErrUnavailable) && !errors.Is(err, errLocalStore)
}

func (rt *runtime) printJSON(v any) error {
	enc := json.NewEncoder(rt.io.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes rows aligned in columns under header.
func (rt *runtime) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(rt.io.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// emit prints v as JSON with --json, otherwise calls text.
func (rt *runtime) emit(v any, text func() error) error {
	if rt.jsonOut {
		return rt.printJSON(v)
	}
	return text()
}

func (rt *runtime) printf(format string, args ...any) {
	fmt.Fprintf(rt.io.Out, format, args...)
}

type styles struct {
	online, syncing, offline, muted lipgloss.Style
}

func (rt *runtime) styles() styles {
	r := lipgloss.NewRenderer(rt.io.Out)
	return styles{
		online:  r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		syncing: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		offline: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted:   r.NewStyle().Faint(true),
	}
}

// indicator renders the connectivity status as a colored dot and label.
func (rt *runtime) indicator(s offline.Status) string {
	st := rt.styles()
	switch s {
	case offline.StatusOnline:
		return st.online.Render("● online")
	case offline.StatusSyncing:
		return st.syncing.Render("◐ syncing")
	default:
		return st.offline.Render("○ offline")
	}
}

func metricRows(ms []domain.Metric) [][]string {
	rows := make([][]string, 0, len(ms))
	for _, m := range ms {
		id := m.ID
		if id == "" {
			id = m.TempID
		}
		state := "synced"
		if !m.Synced {
			state = "pending"
		}
		rows = append(rows, []string{m.Date, string(m.Kind), m.Value + " " + m.Unit, state, id})
	}
	return rows
}

// promptPassword reads a password without echo from a terminal, or a single
// line from piped input.
func (rt *runtime) promptPassword(prompt string) (string, error) {
	if f := rt.io.Stdin; f != nil && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(rt.io.Err, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(rt.io.Err)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(rt.io.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}
