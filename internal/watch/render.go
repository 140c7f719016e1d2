package watch

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/koscakluka/ema-debate/core/events"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

var (
	sourceStyles = map[events.Source]lipgloss.Style{
		events.SourceOpenAI: lipgloss.NewStyle().Foreground(lipgloss.Color("#10A37F")),
		events.SourceGemini: lipgloss.NewStyle().Foreground(lipgloss.Color("#4285F4")),
		events.SourceSystem: lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
	statusStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5484D"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// Renderer writes a human readable transcript of an event feed. Chunks are
// written as they arrive, every other event starts on its own line.
type Renderer struct {
	out   io.Writer
	width int

	// speaking is the source whose chunks are currently being written.
	speaking events.Source
}

func NewRenderer(out io.Writer, width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{out: out, width: width}
}

func (r *Renderer) Render(event events.Event) error {
	switch e := event.(type) {
	case events.Status:
		return r.line(statusStyle, e.Message)
	case events.Info:
		return r.line(sourceStyle(e.Source).Italic(true), e.Message)
	case events.Chunk:
		return r.chunk(e)
	case events.TurnEnd:
		r.endSpeaking()
		_, err := fmt.Fprintln(r.out, mutedStyle.Render(fmt.Sprintf("  (%s finished, %d words)", e.Source, len(strings.Fields(e.FullText)))))
		return err
	case events.Error:
		return r.line(errorStyle, e.Message)
	default:
		return fmt.Errorf("unsupported event kind %q", event.Kind())
	}
}

func (r *Renderer) chunk(chunk events.Chunk) error {
	if r.speaking != chunk.Source {
		r.endSpeaking()
		label := sourceStyle(chunk.Source).Bold(true).Render(strings.ToUpper(string(chunk.Source)) + ":")
		if _, err := fmt.Fprintln(r.out, label); err != nil {
			return err
		}
		r.speaking = chunk.Source
	}
	_, err := io.WriteString(r.out, sourceStyle(chunk.Source).Render(chunk.Text))
	return err
}

func (r *Renderer) line(style lipgloss.Style, message string) error {
	r.endSpeaking()
	wrapped := indent.String(wordwrap.String(message, r.width-2), 2)
	_, err := fmt.Fprintln(r.out, style.Render(wrapped))
	return err
}

func (r *Renderer) endSpeaking() {
	if r.speaking != "" {
		fmt.Fprintln(r.out)
		r.speaking = ""
	}
}

func sourceStyle(source events.Source) lipgloss.Style {
	if style, ok := sourceStyles[source]; ok {
		return style
	}
	return lipgloss.NewStyle()
}
