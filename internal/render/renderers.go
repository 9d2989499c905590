// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"sitecms/internal/content"
	"sitecms/internal/schema"
)

// htmlSanitizer strips dangerous markup from editor-supplied HTML and from
// markdown conversion output before it is marked trusted.
var htmlSanitizer = bluemonday.UGCPolicy()

// sectionTmpls holds the section fragment templates, parsed once. Template
// names match the section type tags.
var sectionTmpls = template.Must(template.New("sections").Parse(`
{{define "hero"}}<section class="section section-hero">
<h1>{{.Title}}</h1>
{{if .Subtitle}}<p class="subtitle">{{.Subtitle}}</p>{{end}}
{{if .CTALabel}}<a class="cta" href="{{.CTAURL}}">{{.CTALabel}}</a>{{end}}
{{if .ImageURL}}<img src="{{.ImageURL}}" alt="">{{end}}
</section>
{{end}}

{{define "text"}}<section class="section section-text">
{{if .Heading}}<h2>{{.Heading}}</h2>{{end}}
<div class="body">{{.Body}}</div>
</section>
{{end}}

{{define "features"}}<section class="section section-features">
{{if .Heading}}<h2>{{.Heading}}</h2>{{end}}
<ul class="features">
{{range .Items}}<li>{{if .Icon}}<span class="icon">{{.Icon}}</span>{{end}}<h3>{{.Title}}</h3>{{if .Description}}<p>{{.Description}}</p>{{end}}</li>
{{end}}</ul>
</section>
{{end}}

{{define "faq-category"}}<section class="section section-faq">
<h2>{{.Category}}</h2>
{{range .Questions}}<details><summary>{{.Question}}</summary><p>{{.Answer}}</p></details>
{{end}}</section>
{{end}}

{{define "pricing-plans"}}<section class="section section-pricing">
{{if .Heading}}<h2>{{.Heading}}</h2>{{end}}
<div class="plans">
{{range .Plans}}<div class="plan{{if .Highlighted}} plan-highlighted{{end}}">
<h3>{{.Name}}</h3>
<p class="price">{{.Price}}{{if .Period}}<span class="period">/{{.Period}}</span>{{end}}</p>
{{if .Features}}<ul>{{range .Features}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .CTALabel}}<a class="cta" href="{{.CTAURL}}">{{.CTALabel}}</a>{{end}}
</div>
{{end}}</div>
</section>
{{end}}

{{define "testimonials"}}<section class="section section-testimonials">
{{if .Heading}}<h2>{{.Heading}}</h2>{{end}}
{{range .Quotes}}<blockquote><p>{{.Quote}}</p><cite>{{.Author}}{{if .Role}}, {{.Role}}{{end}}</cite></blockquote>
{{end}}</section>
{{end}}

{{define "cta"}}<section class="section section-cta">
<h2>{{.Title}}</h2>
{{if .Subtitle}}<p>{{.Subtitle}}</p>{{end}}
<a class="cta" href="{{.ButtonURL}}">{{.ButtonLabel}}</a>
</section>
{{end}}
`))

// Defaults returns a registry with renderers for every built-in section type.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register(schema.TagHero, typedRenderer[heroView](schema.TagHero))
	r.Register(schema.TagText, renderText)
	r.Register(schema.TagFeatures, typedRenderer[featuresView](schema.TagFeatures))
	r.Register(schema.TagFAQCategory, typedRenderer[faqView](schema.TagFAQCategory))
	r.Register(schema.TagPricingPlans, typedRenderer[pricingView](schema.TagPricingPlans))
	r.Register(schema.TagTestimonials, typedRenderer[testimonialsView](schema.TagTestimonials))
	r.Register(schema.TagCTA, typedRenderer[ctaView](schema.TagCTA))
	return r
}

type heroView struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	CTALabel string `json:"cta_label"`
	CTAURL   string `json:"cta_url"`
	ImageURL string `json:"image_url"`
}

type featuresView struct {
	Heading string `json:"heading"`
	Items   []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"items"`
}

type faqView struct {
	Category  string `json:"category"`
	Questions []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"questions"`
}

type pricingView struct {
	Heading string `json:"heading"`
	Plans   []struct {
		Name        string   `json:"name"`
		Price       string   `json:"price"`
		Period      string   `json:"period"`
		Features    []string `json:"features"`
		Highlighted bool     `json:"highlighted"`
		CTALabel    string   `json:"cta_label"`
		CTAURL      string   `json:"cta_url"`
	} `json:"plans"`
}

type testimonialsView struct {
	Heading string `json:"heading"`
	Quotes  []struct {
		Quote  string `json:"quote"`
		Author string `json:"author"`
		Role   string `json:"role"`
	} `json:"quotes"`
}

type ctaView struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	ButtonLabel string `json:"button_label"`
	ButtonURL   string `json:"button_url"`
}

// typedRenderer unmarshals section content into V and executes the fragment
// template named after the tag.
func typedRenderer[V any](tag string) SectionRenderer {
	return func(s content.Section) (template.HTML, error) {
		var view V
		if err := json.Unmarshal(s.Content, &view); err != nil {
			return "", fmt.Errorf("decoding %s content: %w", tag, err)
		}
		var buf bytes.Buffer
		if err := sectionTmpls.ExecuteTemplate(&buf, tag, view); err != nil {
			return "", fmt.Errorf("rendering %s: %w", tag, err)
		}
		return template.HTML(buf.String()), nil
	}
}

// renderText handles the `text` section. The body is interpreted per the
// `format` field: markdown is converted with goldmark, html is passed
// through; both are sanitized before being marked trusted. Plain text relies
// on template escaping.
func renderText(s content.Section) (template.HTML, error) {
	var view struct {
		Heading string `json:"heading"`
		Body    string `json:"body"`
		Format  string `json:"format"`
	}
	if err := json.Unmarshal(s.Content, &view); err != nil {
		return "", fmt.Errorf("decoding text content: %w", err)
	}

	var body template.HTML
	switch view.Format {
	case "markdown":
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(view.Body), &buf); err != nil {
			return "", fmt.Errorf("converting markdown: %w", err)
		}
		body = template.HTML(htmlSanitizer.Sanitize(buf.String()))
	case "html":
		body = template.HTML(htmlSanitizer.Sanitize(view.Body))
	default:
		body = template.HTML(template.HTMLEscapeString(view.Body))
	}

	var buf bytes.Buffer
	if err := sectionTmpls.ExecuteTemplate(&buf, schema.TagText, struct {
		Heading string
		Body    template.HTML
	}{Heading: view.Heading, Body: body}); err != nil {
		return "", fmt.Errorf("rendering text: %w", err)
	}
	return template.HTML(buf.String()), nil
}
