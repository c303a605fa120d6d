package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rshade/virtuallist/internal/logging"
	"github.com/rshade/virtuallist/internal/tui/list"
)

// defaultBrowseHeight is the list height used until the terminal reports its size.
const defaultBrowseHeight = 24

// errNotTerminal is returned when browse is not attached to a terminal.
var errNotTerminal = errors.New("browse requires an interactive terminal")

// entry is one browsable item.
type entry struct {
	ID   string
	Text string
}

type browseParams struct {
	generate int
	infinite bool
	page     int
}

// NewBrowseCmd creates the browse command, an interactive viewer over variable-height items.
func NewBrowseCmd() *cobra.Command {
	var params browseParams

	cmd := &cobra.Command{
		Use:   "browse [file]",
		Short: "Browse variable-height items in the terminal",
		Long: `Shows the paragraphs of a file (blocks separated by blank lines) as a scrolling list.
Only the items in the materialized range are rendered; their heights are measured as they
are drawn. Without a file, --generate creates synthetic multi-line items.`,
		Example: `  vlist browse README.md
  vlist browse --generate 100000
  vlist browse --generate 200 --infinite`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, args, params)
		},
	}

	cmd.Flags().IntVar(&params.generate, "generate", 0, "generate N synthetic items instead of reading a file")
	cmd.Flags().BoolVar(&params.infinite, "infinite", false, "append generated items when the bottom is reached")
	cmd.Flags().IntVar(&params.page, "page", 100, "items appended per load with --infinite")

	return cmd
}

func runBrowse(cmd *cobra.Command, args []string, params browseParams) error {
	if !isTerminal(os.Stdout) {
		return errNotTerminal
	}

	items, err := browseItems(args, params)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	log.Debug().Str("operation", "browse").Int("items", len(items)).Msg("starting browser")

	var opts []list.Option[entry]
	opts = append(opts, list.WithLogger[entry](*log))
	if params.infinite {
		next := len(items)
		opts = append(opts, list.WithLoadMore(func() []entry {
			more := generateEntries(next, params.page)
			next += len(more)
			return more
		}))
	}

	model := list.NewVirtualListModel(items, defaultBrowseHeight, 0, entryID, renderEntry, opts...)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err = p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

// browseItems returns the generated items or the paragraphs of the file in args.
func browseItems(args []string, params browseParams) ([]entry, error) {
	if params.generate > 0 {
		return generateEntries(0, params.generate), nil
	}
	if len(args) == 0 {
		if params.infinite {
			return generateEntries(0, params.page), nil
		}
		return nil, errors.New("a file or --generate is required")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return paragraphs(string(data)), nil
}

// paragraphs splits text into blocks separated by blank lines.
func paragraphs(text string) []entry {
	var (
		out   []entry
		block []string
	)
	flush := func() {
		if len(block) == 0 {
			return
		}
		out = append(out, entry{ID: fmt.Sprintf("p%d", len(out)), Text: strings.Join(block, "\n")})
		block = block[:0]
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()
	return out
}

// generateEntries returns n items numbered from first, with 1 to 5 lines each.
func generateEntries(first, n int) []entry {
	out := make([]entry, n)
	for i := range out {
		id := first + i
		lines := make([]string, 1+id*7%5)
		for j := range lines {
			lines[j] = fmt.Sprintf("item %d, line %d", id, j+1)
		}
		out[i] = entry{ID: fmt.Sprintf("g%d", id), Text: strings.Join(lines, "\n")}
	}
	return out
}

func entryID(e entry) string { return e.ID }

//nolint:gochecknoglobals // Styles are immutable.
var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	markerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderEntry(e entry, selected bool) string {
	if selected {
		return selectedStyle.Render(e.Text)
	}
	return markerStyle.Render(e.Text)
}
