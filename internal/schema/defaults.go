// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

// Section type tags with built-in schemas.
const (
	TagHero         = "hero"
	TagText         = "text"
	TagFeatures     = "features"
	TagFAQCategory  = "faq-category"
	TagPricingPlans = "pricing-plans"
	TagTestimonials = "testimonials"
	TagCTA          = "cta"
)

// Global content keys with built-in schemas.
const (
	KeyNavbar      = "navbar"
	KeyFooter      = "footer"
	KeySocialLinks = "social_links"
	KeyContactInfo = "contact_info"
	KeySiteConfig  = "site_config"
)

// linkFields validates a {label, url} pair.
var linkFields = []Field{
	{Name: "label", Type: TypeString, Required: true, MaxLen: 80},
	{Name: "url", Type: TypeString, Required: true, MaxLen: 2048},
}

// SectionDefaults returns a registry populated with the built-in section
// schemas. Sections and global content keep separate registries so a tag
// from one namespace never validates content in the other.
func SectionDefaults() *Registry {
	r := NewRegistry()

	r.Register(TagHero, &Schema{Fields: []Field{
		{Name: "title", Type: TypeString, Required: true, MaxLen: 200},
		{Name: "subtitle", Type: TypeString, MaxLen: 500},
		{Name: "cta_label", Type: TypeString, MaxLen: 80},
		{Name: "cta_url", Type: TypeString, MaxLen: 2048},
		{Name: "image_url", Type: TypeString, MaxLen: 2048},
	}})

	r.Register(TagText, &Schema{Fields: []Field{
		{Name: "heading", Type: TypeString, MaxLen: 200},
		{Name: "body", Type: TypeString, Required: true, MaxLen: 20000},
		{Name: "format", Type: TypeString, Enum: []string{"markdown", "html", "plain"}},
	}})

	r.Register(TagFeatures, &Schema{Fields: []Field{
		{Name: "heading", Type: TypeString, MaxLen: 200},
		{Name: "items", Type: TypeArray, Required: true, Items: TypeObject, Fields: []Field{
			{Name: "title", Type: TypeString, Required: true, MaxLen: 120},
			{Name: "description", Type: TypeString, MaxLen: 1000},
			{Name: "icon", Type: TypeString, MaxLen: 64},
		}},
	}})

	r.Register(TagFAQCategory, &Schema{Fields: []Field{
		{Name: "category", Type: TypeString, Required: true, MaxLen: 120},
		{Name: "questions", Type: TypeArray, Required: true, Items: TypeObject, Fields: []Field{
			{Name: "question", Type: TypeString, Required: true, MaxLen: 500},
			{Name: "answer", Type: TypeString, Required: true, MaxLen: 5000},
		}},
	}})

	r.Register(TagPricingPlans, &Schema{Fields: []Field{
		{Name: "heading", Type: TypeString, MaxLen: 200},
		{Name: "plans", Type: TypeArray, Required: true, Items: TypeObject, Fields: []Field{
			{Name: "name", Type: TypeString, Required: true, MaxLen: 80},
			{Name: "price", Type: TypeString, Required: true, MaxLen: 40},
			{Name: "period", Type: TypeString, MaxLen: 40},
			{Name: "features", Type: TypeArray, Items: TypeString},
			{Name: "highlighted", Type: TypeBool},
			{Name: "cta_label", Type: TypeString, MaxLen: 80},
			{Name: "cta_url", Type: TypeString, MaxLen: 2048},
		}},
	}})

	r.Register(TagTestimonials, &Schema{Fields: []Field{
		{Name: "heading", Type: TypeString, MaxLen: 200},
		{Name: "quotes", Type: TypeArray, Required: true, Items: TypeObject, Fields: []Field{
			{Name: "quote", Type: TypeString, Required: true, MaxLen: 2000},
			{Name: "author", Type: TypeString, Required: true, MaxLen: 120},
			{Name: "role", Type: TypeString, MaxLen: 120},
		}},
	}})

	r.Register(TagCTA, &Schema{Fields: []Field{
		{Name: "title", Type: TypeString, Required: true, MaxLen: 200},
		{Name: "subtitle", Type: TypeString, MaxLen: 500},
		{Name: "button_label", Type: TypeString, Required: true, MaxLen: 80},
		{Name: "button_url", Type: TypeString, Required: true, MaxLen: 2048},
	}})

	return r
}

// GlobalDefaults returns a registry populated with the built-in global
// content schemas.
func GlobalDefaults() *Registry {
	r := NewRegistry()

	r.Register(KeyNavbar, &Schema{Fields: []Field{
		{Name: "logo_text", Type: TypeString, MaxLen: 80},
		{Name: "links", Type: TypeArray, Required: true, Items: TypeObject, Fields: linkFields},
		{Name: "cta_label", Type: TypeString, MaxLen: 80},
		{Name: "cta_url", Type: TypeString, MaxLen: 2048},
	}})

	r.Register(KeyFooter, &Schema{Fields: []Field{
		{Name: "copyright", Type: TypeString, MaxLen: 200},
		{Name: "columns", Type: TypeArray, Items: TypeObject, Fields: []Field{
			{Name: "heading", Type: TypeString, Required: true, MaxLen: 80},
			{Name: "links", Type: TypeArray, Items: TypeObject, Fields: linkFields},
		}},
	}})

	r.Register(KeySocialLinks, &Schema{Fields: []Field{
		{Name: "links", Type: TypeArray, Required: true, Items: TypeObject, Fields: []Field{
			{Name: "platform", Type: TypeString, Required: true, MaxLen: 40},
			{Name: "url", Type: TypeString, Required: true, MaxLen: 2048},
		}},
	}})

	r.Register(KeyContactInfo, &Schema{Fields: []Field{
		{Name: "email", Type: TypeString, MaxLen: 254},
		{Name: "phone", Type: TypeString, MaxLen: 40},
		{Name: "address", Type: TypeString, MaxLen: 500},
	}})

	r.Register(KeySiteConfig, &Schema{Fields: []Field{
		{Name: "site_name", Type: TypeString, Required: true, MaxLen: 120},
		{Name: "tagline", Type: TypeString, MaxLen: 200},
		{Name: "maintenance_mode", Type: TypeBool},
	}})

	return r
}
