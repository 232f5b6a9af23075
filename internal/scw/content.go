// File: internal/scw/content.go
package scw

import "strings"

// Content is the catalog entry for one mapping key: an optional landing page,
// videos, and exercise links tagged with the language/framework stacks they
// apply to. Entries are fetched per rule and never persisted.
type Content struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Videos      []string `json:"videos"`
	Links       []Link   `json:"links"`
}

// Link is a single exercise or reading reference. An empty LanguageFrameworks
// list marks the link as language-agnostic.
type Link struct {
	URL                string   `json:"url"`
	LanguageFrameworks []string `json:"languageFrameworks"`
}

func (c *Content) isEmpty() bool {
	return c.URL == "" && len(c.Videos) == 0 && len(c.Links) == 0
}

// Video returns the primary video URL, or "" when the entry has none. The
// media host serves files with literal spaces in their names; those must be
// escaped for the link to survive the platform's HTML renderer.
func (c *Content) Video() string {
	if c == nil || len(c.Videos) == 0 {
		return ""
	}
	return strings.ReplaceAll(c.Videos[0], " ", "+")
}

// HasExerciseFor reports whether any link applies to the given SCW language
// key. Framework tags are qualified ("python:django"); the match compares
// the base language segment so "java" covers "java:spring".
func (c *Content) HasExerciseFor(scwKey string) bool {
	if c == nil {
		return false
	}
	want := baseLanguage(scwKey)
	for _, link := range c.Links {
		for _, fw := range link.LanguageFrameworks {
			if baseLanguage(fw) == want {
				return true
			}
		}
	}
	return false
}

// LanguageAgnosticLinks returns the reference URLs that are not tied to any
// particular language stack.
func (c *Content) LanguageAgnosticLinks() []string {
	if c == nil {
		return nil
	}
	var urls []string
	for _, link := range c.Links {
		if len(link.LanguageFrameworks) == 0 && link.URL != "" {
			urls = append(urls, link.URL)
		}
	}
	return urls
}

func baseLanguage(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		key = key[:i]
	}
	return strings.ToLower(strings.TrimSpace(key))
}
