// Package search scores content entries against keyword queries for
// quick "which bullet mentioned kafka" lookups from the command line.
package search

import (
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/loader"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/resolver"
	"github.com/starford/ansuz/internal/storage"
)

// Scoring weights. An exact tag hit outranks any number of substring
// hits on the same term.
const (
	scoreTagExact      = 10
	scoreRoleMatch     = 5
	scoreBodySubstring = 1
)

// Match is one scored search hit.
type Match struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Type     string `json:"type"` // "experience", "project", "bullet"
	File     string `json:"file"`
	Score    int    `json:"score"`
	Snippet  string `json:"snippet,omitempty"`
}

// Run scores every content entry against the comma-separated query and
// returns matches sorted by score descending, ties broken by ID.
// Files that fail to load are skipped; search is a convenience layer,
// not a validator.
func Run(store *storage.FS, query string) ([]Match, error) {
	terms := parseQuery(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var matches []Match

	files, err := store.ListYAML(resolver.ExperienceDir)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		abs, err := store.Abs(file)
		if err != nil {
			continue
		}
		var ef models.ExperienceFile
		if err := loader.Load(abs, &ef); err != nil {
			continue
		}
		for _, entry := range ef.Entries {
			matches = append(matches, scoreExperience(file, entry, terms)...)
		}
	}

	files, err = store.ListYAML(resolver.ProjectsDir)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		abs, err := store.Abs(file)
		if err != nil {
			continue
		}
		var pf models.ProjectFile
		if err := loader.Load(abs, &pf); err != nil {
			continue
		}
		for _, entry := range pf.Entries {
			matches = append(matches, scoreProject(file, entry, terms)...)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

// parseQuery splits a comma-separated query into lowercase terms,
// dropping empties.
func parseQuery(query string) []string {
	var terms []string
	for _, raw := range strings.Split(query, ",") {
		term := strings.ToLower(strings.TrimSpace(raw))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// scoreExperience scores the entry and each of its bullets. The entry
// match covers role hits; bullets that score on their own (or belong
// to a scoring entry) are reported individually with the entry as
// parent.
func scoreExperience(file string, e models.ExperienceEntry, terms []string) []Match {
	entryScore := 0
	for _, term := range terms {
		if strings.Contains(strings.ToLower(e.Role), term) {
			entryScore += scoreRoleMatch
		}
	}

	var out []Match
	if entryScore > 0 {
		out = append(out, Match{
			ID:      string(e.ID),
			Type:    "experience",
			File:    file,
			Score:   entryScore,
			Snippet: snippet(e.Role + ", " + e.Company),
		})
	}

	for _, h := range e.Highlights {
		bulletScore := scoreHighlight(h, terms)
		if bulletScore+entryScore == 0 {
			continue
		}
		out = append(out, Match{
			ID:       string(h.ID),
			ParentID: string(e.ID),
			Type:     "bullet",
			File:     file,
			Score:    bulletScore + entryScore,
			Snippet:  snippet(h.Text),
		})
	}
	return out
}

func scoreProject(file string, p models.ProjectEntry, terms []string) []Match {
	score := 0
	for _, term := range terms {
		for _, tag := range p.Technologies {
			if string(tag) == term {
				score += scoreTagExact
			}
		}
		if strings.Contains(strings.ToLower(p.Name), term) {
			score += scoreRoleMatch
		}
		if strings.Contains(strings.ToLower(p.Description), term) {
			score += scoreBodySubstring
		}
	}

	var out []Match
	if score > 0 {
		out = append(out, Match{
			ID:      string(p.ID),
			Type:    "project",
			File:    file,
			Score:   score,
			Snippet: snippet(p.Description),
		})
	}

	for _, h := range p.Highlights {
		bulletScore := scoreHighlight(h, terms)
		if bulletScore == 0 {
			continue
		}
		out = append(out, Match{
			ID:       string(h.ID),
			ParentID: string(p.ID),
			Type:     "bullet",
			File:     file,
			Score:    bulletScore,
			Snippet:  snippet(h.Text),
		})
	}
	return out
}

// scoreHighlight scores one bullet: exact tag matches weigh heaviest,
// body substrings least. Tags are stored normalized to lowercase, so
// the comparison is exact.
func scoreHighlight(h models.Highlight, terms []string) int {
	score := 0
	body := strings.ToLower(h.Text + " " + h.Impact)
	for _, term := range terms {
		for _, tag := range h.Tags {
			if string(tag) == term {
				score += scoreTagExact
			}
		}
		if strings.Contains(body, term) {
			score += scoreBodySubstring
		}
	}
	return score
}

const snippetLen = 100

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLen {
		return text
	}
	return string(runes[:snippetLen]) + "..."
}
