// internal/delivery/render.go
package delivery

import (
	"fmt"
	"strings"

	"github.com/user/magnus/internal/types"
)

// Render flattens a reply message into plain markdown text for surfaces
// that cannot display structured payloads. The message text always comes
// first; payload details follow.
func Render(msg *types.Message) string {
	var b strings.Builder
	if msg.Content != "" {
		b.WriteString(msg.Content)
	}

	if msg.Payload != nil {
		renderPayload(&b, msg.Payload)
	}

	if len(msg.Sources) > 0 {
		section(&b, "Sources:")
		for _, s := range msg.Sources {
			title := s.Title
			if title == "" {
				title = s.URI
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", title, s.URI)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		out = "(no response)"
	}
	return out
}

func renderPayload(b *strings.Builder, p *types.Payload) {
	switch {
	case p.Music != nil:
		m := p.Music
		section(b, fmt.Sprintf("*%s* by %s\n%s\nTempo: %d BPM, mood: %s", m.Title, m.Artist, m.Description, m.Tempo, m.Mood))
		for _, link := range m.Links {
			fmt.Fprintf(b, "\n- [%s](%s)", link.Title, link.URL)
		}
		b.WriteString("\n")

	case p.VideoSearch != nil:
		section(b, fmt.Sprintf("Videos for %q:", p.VideoSearch.Query))
		for _, r := range p.VideoSearch.Results {
			fmt.Fprintf(b, "- [%s](%s)\n", r.Title, r.URL)
		}

	case p.Video != nil:
		v := p.Video
		label := v.Title
		if v.Artist != "" {
			label = fmt.Sprintf("%s by %s", v.Title, v.Artist)
		}
		section(b, fmt.Sprintf("[%s](https://www.youtube.com/watch?v=%s)", label, v.VideoID))

	case p.Location != nil:
		l := p.Location
		section(b, fmt.Sprintf("%s\n%s\nhttps://www.google.com/maps?q=%f,%f", l.Name, l.Address, l.Latitude, l.Longitude))

	case p.StudyGuide != nil:
		g := p.StudyGuide
		section(b, fmt.Sprintf("*Study Guide: %s*\n\n%s", g.Topic, g.Summary))
		if len(g.KeyConcepts) > 0 {
			section(b, "Key concepts:")
			for _, c := range g.KeyConcepts {
				fmt.Fprintf(b, "- *%s*: %s\n", c.Concept, c.Explanation)
			}
		}
		if len(g.PracticeQuestions) > 0 {
			section(b, "Practice questions:")
			for i, q := range g.PracticeQuestions {
				fmt.Fprintf(b, "%d. %s\n", i+1, q)
			}
		}
		if len(g.FurtherReading) > 0 {
			section(b, "Further reading:")
			for _, r := range g.FurtherReading {
				fmt.Fprintf(b, "- %s\n", r)
			}
		}

	case p.MultiAgent != nil:
		s := p.MultiAgent
		section(b, fmt.Sprintf("Plan: %s", s.Plan))
		for _, task := range s.Tasks {
			mark := " "
			if task.Complete {
				mark = "x"
			}
			fmt.Fprintf(b, "[%s] %s: %s\n", mark, task.Role, task.Instruction)
		}

	case p.CodeBlock != nil:
		c := p.CodeBlock
		section(b, fmt.Sprintf("```%s\n%s\n```\n%s", c.Language, c.Code, c.Explanation))
		if c.SimulatedOutput != "" {
			section(b, fmt.Sprintf("Output:\n```\n%s\n```", c.SimulatedOutput))
		}

	case p.Workflow != nil:
		w := p.Workflow
		section(b, fmt.Sprintf("Perceive: %s\n\nReason: %s\n\nAct: %s\n\nLearn: %s",
			w.Perceive.Content, w.Reason.Content, w.Act.Content, w.Learn.Content))
	}

	if len(p.Actions) > 0 {
		section(b, "Proposed actions:")
		for _, a := range p.Actions {
			fmt.Fprintf(b, "- %s: %s\n", a.Type, a.Description)
		}
	}
}

func section(b *strings.Builder, text string) {
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
}
