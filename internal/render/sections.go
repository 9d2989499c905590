// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"sync"

	"sitecms/internal/content"
)

// SectionRenderer turns one section's validated content into an HTML
// fragment. Renderers receive content that already passed schema validation;
// they still treat string fields as untrusted text.
type SectionRenderer func(s content.Section) (template.HTML, error)

// Registry maps section type tags to renderers. Unknown tags resolve to a
// diagnostic fallback rather than an error, so a page with one unrenderable
// section still renders.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]SectionRenderer
}

// NewRegistry creates an empty renderer registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]SectionRenderer)}
}

// Register binds a renderer to a type tag, replacing any previous binding.
func (r *Registry) Register(tag string, fn SectionRenderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[tag] = fn
}

// Resolve returns the renderer for a tag, or the diagnostic fallback when no
// renderer is registered.
func (r *Registry) Resolve(tag string) SectionRenderer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.renderers[tag]; ok {
		return fn
	}
	return renderFallback
}

// RenderSections renders each section in order. A renderer failure degrades
// that one section to the fallback block and is logged; it never fails the
// page.
func (r *Registry) RenderSections(sections []content.Section) []template.HTML {
	fragments := make([]template.HTML, 0, len(sections))
	for _, s := range sections {
		html, err := r.Resolve(s.TypeTag)(s)
		if err != nil {
			slog.Warn("section render failed, using fallback", "section_id", s.ID, "type", s.TypeTag, "error", err)
			html, _ = renderFallback(s)
		}
		fragments = append(fragments, html)
	}
	return fragments
}

// fallbackTmpl shows the raw tag and pretty-printed content so an editor can
// see what a page is missing a renderer for. All values pass through
// html/template escaping.
var fallbackTmpl = template.Must(template.New("fallback").Parse(`<section class="section section-unknown" data-type="{{.Tag}}">
<p>No renderer for section type <code>{{.Tag}}</code>.</p>
<pre>{{.Content}}</pre>
</section>
`))

func renderFallback(s content.Section) (template.HTML, error) {
	pretty := string(s.Content)
	var buf bytes.Buffer
	if err := json.Indent(&buf, s.Content, "", "  "); err == nil {
		pretty = buf.String()
	}

	var out bytes.Buffer
	if err := fallbackTmpl.Execute(&out, struct {
		Tag     string
		Content string
	}{Tag: s.TypeTag, Content: pretty}); err != nil {
		return "", fmt.Errorf("rendering fallback: %w", err)
	}
	return template.HTML(out.String()), nil
}
