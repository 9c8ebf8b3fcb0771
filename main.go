package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmelton/folio/internal/analyze"
	"github.com/dmelton/folio/internal/document"
	"github.com/dmelton/folio/internal/extract"
	"github.com/dmelton/folio/internal/format"
	"github.com/dmelton/folio/internal/layout"
	"github.com/dmelton/folio/internal/library"
	"github.com/dmelton/folio/internal/logging"
	"github.com/dmelton/folio/internal/ocr"
	"github.com/dmelton/folio/internal/pagination"
	"github.com/dmelton/folio/internal/selection"
	"github.com/dmelton/folio/internal/store"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	authorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F87AF")).
			Padding(0, 1)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))
)

const baseFontPt = 10

type mode int

const (
	modeReading mode = iota
	modeLookup
	modeAnalysis
)

type model struct {
	lib      *library.Library
	ctrl     *pagination.Controller
	measurer *layout.CellMeasurer
	analyzer analyze.Analyzer
	doc      *document.Document

	mode     mode
	spin     spinner.Model
	input    textinput.Model
	fontPt   float64
	width    int
	height   int
	quitting bool

	result    *lookupResult
	lookupErr error
	looking   bool
}

// lookupResult holds one finished analysis for display and favoriting.
type lookupResult struct {
	span     selection.Span
	word     *analyze.WordAnalysis
	sentence *analyze.SentenceAnalysis
}

func (r *lookupResult) translation() string {
	if r.word != nil {
		return r.word.ChineseMeaning
	}
	if r.sentence != nil {
		return r.sentence.Translation
	}
	return ""
}

type tickMsg time.Time

type analysisMsg struct {
	result *lookupResult
	err    error
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newModel(lib *library.Library, doc *document.Document, analyzer analyze.Analyzer) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "word or sentence"
	ti.CharLimit = 500

	fontPt := float64(baseFontPt)
	if s := lib.Settings(); s.FontSizePt > 0 {
		fontPt = s.FontSizePt
	}

	measurer := layout.NewCellMeasurer()
	ctrl := pagination.NewController(measurer, lib)

	return model{
		lib:      lib,
		ctrl:     ctrl,
		measurer: measurer,
		analyzer: analyzer,
		doc:      doc,
		spin:     sp,
		input:    ti,
		fontPt:   fontPt,
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tick())
}

// bodyHeight is the line budget left for text after the header, status and
// controls rows.
func (m model) bodyHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) config() document.RenderConfig {
	return layout.TerminalConfig(m.width, m.bodyHeight(), m.fontPt)
}

func (m model) lookup(span selection.Span) tea.Cmd {
	analyzer := m.analyzer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res := &lookupResult{span: span}
		var err error
		if span.Kind == selection.Word {
			res.word, err = analyzer.Word(ctx, span.Text)
		} else {
			res.sentence, err = analyzer.Sentence(ctx, span.Text)
		}
		if err != nil {
			return analysisMsg{err: err}
		}
		return analysisMsg{result: res}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeLookup:
			return m.updateLookup(msg)
		case modeAnalysis:
			return m.updateAnalysis(msg)
		}
		return m.updateReading(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ctrl.SetConfig(m.config())
		return m, nil

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case analysisMsg:
		m.looking = false
		m.result = msg.result
		m.lookupErr = msg.err
		m.mode = modeAnalysis
		return m, nil
	}

	return m, nil
}

func (m model) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "right", "l", " ":
		m.ctrl.NextPage()
	case "left", "h":
		m.ctrl.PrevPage()
	case "g":
		m.ctrl.JumpToProgress(0)
	case "G":
		m.ctrl.JumpToProgress(100)
	case "+", "=":
		if m.fontPt < 40 {
			m.fontPt += 2
			m.saveFont()
			m.ctrl.SetConfig(m.config())
		}
	case "-":
		if m.fontPt > 6 {
			m.fontPt -= 2
			m.saveFont()
			m.ctrl.SetConfig(m.config())
		}
	case "/":
		m.mode = modeLookup
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case "q", "Q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) updateLookup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeReading
		m.input.Blur()
		return m, nil
	case "enter":
		span, ok := selection.Classify(m.input.Value())
		if !ok {
			return m, nil
		}
		m.input.Blur()
		if m.analyzer == nil {
			m.mode = modeAnalysis
			m.result = nil
			m.lookupErr = analyze.ErrNoAnalyzer
			return m, nil
		}
		m.mode = modeAnalysis
		m.result = nil
		m.lookupErr = nil
		m.looking = true
		return m, m.lookup(span)
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateAnalysis(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		if !m.looking {
			m.mode = modeReading
		}
	case "f":
		if r := m.result; r != nil {
			m.lib.ToggleFavorite(r.span.Kind.String(), r.span.Text, r.translation())
		}
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) saveFont() {
	s := m.lib.Settings()
	s.FontSizePt = m.fontPt
	m.lib.SaveSettings(s)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.doc.Title))
	if m.doc.Author != "" {
		sb.WriteString(authorStyle.Render(" — " + m.doc.Author))
	}
	sb.WriteString("\n")

	switch m.mode {
	case modeLookup:
		sb.WriteString(m.viewLookup())
	case modeAnalysis:
		sb.WriteString(m.viewAnalysis())
	default:
		sb.WriteString(m.viewPage())
	}

	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(m.controlsLine())
	return sb.String()
}

func (m model) viewPage() string {
	cfg := m.config()
	lines := m.measurer.Lines(m.doc, m.measurer.Columns(cfg))
	perPage := m.measurer.LinesPerColumn(cfg) * cfg.ColumnCount

	pages := m.ctrl.Pages()
	body := pageSlice(lines, pages.CurrentPage, perPage)

	var sb strings.Builder
	for i := 0; i < perPage; i++ {
		if i < len(body) {
			sb.WriteString(body[i])
		}
		if i < perPage-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m model) viewLookup() string {
	prompt := "Look up a word (1-2 tokens) or paste a sentence:\n\n" + m.input.View()
	return panelStyle.Render(prompt)
}

func (m model) viewAnalysis() string {
	if m.looking {
		return panelStyle.Render(m.spin.View() + " analyzing…")
	}
	if m.lookupErr != nil {
		return panelStyle.Render(errStyle.Render("lookup failed: " + m.lookupErr.Error()))
	}
	if m.result == nil {
		return panelStyle.Render("no result")
	}
	return panelStyle.Render(renderAnalysis(m.result))
}

func renderAnalysis(r *lookupResult) string {
	var sb strings.Builder
	if w := r.word; w != nil {
		sb.WriteString(titleStyle.Render(w.Word))
		if w.Phonetic != "" {
			sb.WriteString("  " + w.Phonetic)
		}
		sb.WriteString("  " + authorStyle.Render(w.PartOfSpeech))
		sb.WriteString("\n\n" + w.Meaning)
		if w.ChineseMeaning != "" {
			sb.WriteString("\n" + w.ChineseMeaning)
		}
		if len(w.Examples) > 0 {
			sb.WriteString("\n")
			for _, ex := range w.Examples {
				sb.WriteString("\n  · " + ex)
			}
		}
		if len(w.Synonyms) > 0 {
			sb.WriteString("\n\nSynonyms: " + strings.Join(w.Synonyms, ", "))
		}
		writeSources(&sb, w.Sources)
	}
	if s := r.sentence; s != nil {
		sb.WriteString(titleStyle.Render(s.Original))
		sb.WriteString("\n\n" + s.Translation)
		if len(s.Structure) > 0 {
			sb.WriteString("\n")
			for _, part := range s.Structure {
				sb.WriteString("\n  " + part.Part + " — " + part.Explanation)
			}
		}
		if len(s.GrammarPoints) > 0 {
			sb.WriteString("\n\nGrammar: " + strings.Join(s.GrammarPoints, "; "))
		}
		if len(s.KeyVocabulary) > 0 {
			sb.WriteString("\n")
			for _, v := range s.KeyVocabulary {
				sb.WriteString("\n  " + v.Word + ": " + v.Meaning)
			}
		}
		writeSources(&sb, s.Sources)
	}
	return sb.String()
}

func writeSources(sb *strings.Builder, sources []analyze.Source) {
	if len(sources) == 0 {
		return
	}
	sb.WriteString("\n")
	for _, s := range sources {
		sb.WriteString("\n  » " + s.Title + " <" + s.URL + ">")
	}
}

func (m model) statusLine() string {
	pages := m.ctrl.Pages()
	state := ""
	if m.ctrl.State() == pagination.Measuring {
		state = " " + m.spin.View() + "reflowing"
	}
	return statusStyle.Render(fmt.Sprintf("Page %d/%d | %d%%%s",
		pages.CurrentPage+1, pages.TotalPages, m.ctrl.Progress(), state))
}

func (m model) controlsLine() string {
	switch m.mode {
	case modeLookup:
		return controlsStyle.Render("ENTER: analyze  ESC: back")
	case modeAnalysis:
		return controlsStyle.Render("F: save/unsave  ESC: back")
	}
	return controlsStyle.Render("←/→: page  g/G: start/end  +/-: font  /: look up  Q: quit")
}

// pageSlice cuts one page worth of lines out of the full flow.
func pageSlice(lines []string, page, perPage int) []string {
	if perPage < 1 || page < 0 {
		return nil
	}
	start := page * perPage
	if start >= len(lines) {
		return nil
	}
	end := start + perPage
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start:end]
}

// resolveTag decides the format of an input file from its name, a declared
// MIME type, and finally the leading bytes of its content.
func resolveTag(path, declaredMIME string) (format.Tag, error) {
	tag, err := format.Detect(path, declaredMIME)
	if err == nil {
		return tag, nil
	}

	head := make([]byte, 512)
	f, openErr := os.Open(path)
	if openErr != nil {
		return format.Unsupported, err
	}
	defer f.Close()
	n, readErr := io.ReadFull(f, head)
	if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
		return format.Unsupported, err
	}
	if sniffed := format.Sniff(head[:n]); sniffed != format.Unsupported {
		logging.Debugf("format: %s detected by content sniff as %v", filepath.Base(path), sniffed)
		return sniffed, nil
	}
	return format.Unsupported, err
}

// newAnalyzer builds the lookup client from the environment and settings,
// or returns nil when no endpoint is configured.
func newAnalyzer(settings library.Settings) analyze.Analyzer {
	endpoint := os.Getenv("FOLIO_ANALYZE_URL")
	if endpoint == "" {
		return nil
	}
	key := os.Getenv("FOLIO_ANALYZE_KEY")
	if key == "" {
		key = settings.AnalyzeKey
	}
	return analyze.NewClient(endpoint, key)
}

func importFile(lib *library.Library, path, declaredMIME string) (*document.Document, error) {
	tag, err := resolveTag(path, declaredMIME)
	if err != nil {
		return nil, err
	}
	doc, err := extract.File(path, tag)
	if err != nil {
		return nil, err
	}
	lib.Add(doc)
	return doc, nil
}

func main() {
	mime := flag.String("mime", "", "Declared MIME type for the input file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Folio - Terminal Reading Companion\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  folio [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  folio book.epub           Import and read an EPUB\n")
		fmt.Fprintf(os.Stderr, "  folio notes.md            Import and read a Markdown file\n")
		fmt.Fprintf(os.Stderr, "  folio                     Resume the most recent book\n")
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  ←/→      Previous/next page\n")
		fmt.Fprintf(os.Stderr, "  g/G      Jump to start/end\n")
		fmt.Fprintf(os.Stderr, "  +/-      Adjust font size\n")
		fmt.Fprintf(os.Stderr, "  /        Look up a word or sentence\n")
		fmt.Fprintf(os.Stderr, "  Q        Quit\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("folio %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}
	if *verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	if client, err := ocr.New(); err == nil {
		defer client.Close()
		extract.UseTranscriber(client)
	} else {
		logging.Debugf("ocr: %v", err)
	}

	st, err := store.Open(store.DefaultDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening state directory: %v\n", err)
		os.Exit(1)
	}
	lib := library.Open(st)

	var doc *document.Document
	if flag.NArg() > 0 {
		doc, err = importFile(lib, flag.Arg(0), *mime)
		if err != nil {
			var ee *extract.Error
			if errors.As(err, &ee) {
				fmt.Fprintf(os.Stderr, "Error: %s\n", ee.Reason)
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}
	} else {
		records := lib.Records()
		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "Error: No input provided and the library is empty.")
			fmt.Fprintln(os.Stderr, "Try: folio -h")
			os.Exit(1)
		}
		doc = records[0].Document()
	}

	m := newModel(lib, doc, newAnalyzer(lib.Settings()))
	m.ctrl.Load(doc, m.config())
	if saved := lib.Progress(doc.ID); saved > 0 {
		m.ctrl.JumpToProgress(saved)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
