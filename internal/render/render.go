// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render turns validated content into HTML: per-section fragment
// renderers keyed by type tag, and a page renderer that wraps the fragments
// in the site layout with the global navbar and footer.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"

	"sitecms/internal/content"
)

// NavbarView is the navbar block of the layout.
type NavbarView struct {
	LogoText string `json:"logo_text"`
	Links    []Link `json:"links"`
	CTALabel string `json:"cta_label"`
	CTAURL   string `json:"cta_url"`
}

// FooterView is the footer block of the layout.
type FooterView struct {
	Copyright string `json:"copyright"`
	Columns   []struct {
		Heading string `json:"heading"`
		Links   []Link `json:"links"`
	} `json:"columns"`
}

// Link is a label/url pair used across navbar and footer.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// PageView is the data passed to the site layout.
type PageView struct {
	Title    string
	SiteName string
	Navbar   NavbarView
	Footer   FooterView
	Sections []template.HTML
}

// Renderer renders full public pages with the site layout.
type Renderer struct {
	layout   *template.Template
	sections *Registry
	siteName string
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS fs.FS
	Sections    *Registry
	SiteName    string
}

// New creates a Renderer with the layout parsed from the templates
// filesystem.
func New(cfg Config) (*Renderer, error) {
	layout, err := template.ParseFS(cfg.TemplatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parsing layout: %w", err)
	}
	return &Renderer{
		layout:   layout,
		sections: cfg.Sections,
		siteName: cfg.SiteName,
	}, nil
}

// Page renders a complete page: the sections in order, framed by the navbar
// and footer from global content. Missing global entries render as empty
// blocks, not errors.
func (r *Renderer) Page(title string, sections []content.Section, globals []content.GlobalEntry) ([]byte, error) {
	view := PageView{
		Title:    title,
		SiteName: r.siteName,
		Sections: r.sections.RenderSections(sections),
	}

	for _, g := range globals {
		switch g.Key {
		case "navbar":
			// Decode errors leave the block empty; the entry passed
			// validation on write, so this only guards schema drift.
			_ = json.Unmarshal(g.Content, &view.Navbar)
		case "footer":
			_ = json.Unmarshal(g.Content, &view.Footer)
		}
	}

	var buf bytes.Buffer
	if err := r.layout.ExecuteTemplate(&buf, "layout.html", view); err != nil {
		return nil, fmt.Errorf("rendering page %q: %w", title, err)
	}
	return buf.Bytes(), nil
}
