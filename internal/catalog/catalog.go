// Package catalog loads the static course catalog and answers fuzzy search
// queries over it. The catalog is read-only reference data, built once at
// startup from a JSON course-code -> course-name mapping.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"outlinehub/internal/model"
)

// minQueryLength is the shortest query the search will attempt to match.
const minQueryLength = 2

// Match is one ranked search result.
type Match struct {
	model.Course
	Score int `json:"score"`
}

// Catalog is an immutable, searchable set of courses. Safe for concurrent use.
type Catalog struct {
	courses []model.Course
	haystck []string
}

// Load builds a catalog from the JSON mapping file at path. Course codes are
// expected in "MAJOR NUMBER" form; the major is the first token of the code.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course mapping: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw JSON mapping content.
func Parse(data []byte) (*Catalog, error) {
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("decode course mapping: %w", err)
	}

	codes := make([]string, 0, len(mapping))
	for code := range mapping {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	c := &Catalog{
		courses: make([]model.Course, 0, len(codes)),
		haystck: make([]string, 0, len(codes)),
	}
	for i, code := range codes {
		major, _, _ := strings.Cut(code, " ")
		course := model.Course{
			ID:         strconv.Itoa(i),
			CourseCode: code,
			Name:       mapping[code],
			Major:      major,
		}
		c.courses = append(c.courses, course)
		c.haystck = append(c.haystck, code+" "+mapping[code])
	}
	return c, nil
}

// Len returns the number of courses in the catalog.
func (c *Catalog) Len() int { return len(c.courses) }

// String returns the searchable text of course i (fuzzy.Source).
func (c *Catalog) String(i int) string { return c.haystck[i] }

var _ fuzzy.Source = (*Catalog)(nil)

// Search returns up to limit courses fuzzily matching query, best score
// first. Queries shorter than two characters return no results.
func (c *Catalog) Search(query string, limit int) []Match {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLength || limit <= 0 {
		return nil
	}

	results := fuzzy.FindFrom(query, c)
	if len(results) > limit {
		results = results[:limit]
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{Course: c.courses[r.Index], Score: r.Score})
	}
	return matches
}

// Lookup returns the course with the exact code, if present.
func (c *Catalog) Lookup(code string) (model.Course, bool) {
	for _, course := range c.courses {
		if course.CourseCode == code {
			return course, true
		}
	}
	return model.Course{}, false
}
