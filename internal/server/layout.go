package server

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/conneroisu/docblocks/internal/blocks"
	"github.com/conneroisu/docblocks/internal/docs"
	"github.com/conneroisu/docblocks/internal/registry"
)

const pageStyles = `
body { font-family: system-ui, -apple-system, sans-serif; margin: 0; padding: 20px 40px; color: #333; }
.docblock-page h1 { border-bottom: 1px solid #eee; padding-bottom: 8px; }
.docblock-index a { color: #1ea7fd; text-decoration: none; }
.docblock-canvas { padding: 1rem; }
`

// liveScript posts control activations for preview blocks and swaps in the
// returned markup. It reloads the page when the server reports a change.
const liveScript = `
document.addEventListener("click", async (event) => {
  const control = event.target.closest("[data-action]");
  if (!control || control.disabled) return;
  const block = control.closest("[data-preview-id]");
  if (!block) return;
  event.preventDefault();
  const id = encodeURIComponent(block.dataset.previewId);
  const action = encodeURIComponent(control.dataset.action);
  const res = await fetch("/preview/" + id + "/" + action, { method: "POST" });
  if (res.status === 404) { location.reload(); return; }
  if (!res.ok) return;
  const html = await res.text();
  block.outerHTML = html;
});
(function connect() {
  const proto = location.protocol === "https:" ? "wss:" : "ws:";
  const ws = new WebSocket(proto + "//" + location.host + "/ws");
  ws.onmessage = (event) => {
    const msg = JSON.parse(event.data);
    if (msg.type === "reload") location.reload();
    if (msg.type === "error") console.error("docblocks:", msg.content);
  };
  ws.onclose = () => setTimeout(connect, 1000);
})();
`

// Document wraps body in the HTML shell with styles and the live script.
func Document(title string, body templ.Component) templ.Component {
	return document(title, body, liveScript)
}

// StaticDocument wraps body without the live script, for pages written to
// disk and opened without a server.
func StaticDocument(title string, body templ.Component) templ.Component {
	return document(title, body, "")
}

func document(title string, body templ.Component, script string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title><style>%s%s</style></head><body>`,
			templ.EscapeString(title), blocks.Stylesheet, pageStyles,
		); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		if script != "" {
			if _, err := fmt.Fprintf(w, `<script>%s</script>`, script); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Index lists the docs pages and every registered story.
func Index(pages []docs.PageSummary, stories []*registry.Story) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<main class="docblock-index"><h1>Docs</h1><h2>Pages</h2><ul class="docblock-pages">`); err != nil {
			return err
		}
		for _, p := range pages {
			if _, err := fmt.Fprintf(w, `<li><a href="/docs/%s">%s</a></li>`,
				templ.EscapeString(url.PathEscape(p.ID)), templ.EscapeString(p.Title)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul><h2>Stories</h2><ul class="docblock-stories">`); err != nil {
			return err
		}
		for _, s := range stories {
			if _, err := fmt.Fprintf(w, `<li><a href="%s">%s</a></li>`,
				templ.EscapeString(blocks.CanvasURL("/iframe.html", s.ID)), templ.EscapeString(s.DisplayTitle())); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></main>`)
		return err
	})
}

// Canvas shows a single story on its own, followed by its description.
func Canvas(story templ.Component, description templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="docblock-canvas">`); err != nil {
			return err
		}
		for _, c := range []templ.Component{story, description} {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
