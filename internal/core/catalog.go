package core

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Document is a note known to the title source.
type Document struct {
	Title string // basename without .md
	Path  string // vault-relative, forward slashes
}

// TitleCatalog is the ordered list of titles eligible for matching.
// Rebuild orders it longest first; Renamed and Deleted edit it in place
// without re-sorting.
//
// A catalog is owned by a single session and is not safe for concurrent use.
type TitleCatalog struct {
	titles []string
}

// NewTitleCatalog returns a catalog holding titles in the given order.
func NewTitleCatalog(titles ...string) *TitleCatalog {
	return &TitleCatalog{titles: append([]string(nil), titles...)}
}

// Rebuild replaces the catalog with the titles of docs that survive the
// exclusion filters, sorted by descending character length. Equal lengths
// keep their input order. Empty titles and titles that are not valid UTF-8
// are dropped since no text can mention them.
func (c *TitleCatalog) Rebuild(docs []Document, excludedNames, excludedFolders []string) {
	names := make(map[string]bool, len(excludedNames))
	for _, n := range excludedNames {
		names[n] = true
	}

	titles := make([]string, 0, len(docs))
	for _, d := range docs {
		if !matchable(d.Title) || names[d.Title] || inExcludedFolder(d.Path, excludedFolders) {
			continue
		}
		titles = append(titles, d.Title)
	}
	sortLongestFirst(titles)
	c.titles = titles
}

// Add appends name. Unmatchable names are ignored.
func (c *TitleCatalog) Add(name string) {
	if !matchable(name) {
		return
	}
	c.titles = append(c.titles, name)
}

// Renamed replaces oldName with newName at the same position.
// If oldName is unknown, newName is appended. An unmatchable newName
// removes oldName.
func (c *TitleCatalog) Renamed(newName, oldName string) {
	if !matchable(newName) {
		c.Deleted(oldName)
		return
	}
	if i := c.index(oldName); i >= 0 {
		c.titles[i] = newName
		return
	}
	c.titles = append(c.titles, newName)
}

// Deleted removes the first occurrence of name. Unknown names are ignored.
func (c *TitleCatalog) Deleted(name string) {
	i := c.index(name)
	if i < 0 {
		return
	}
	c.titles = append(c.titles[:i], c.titles[i+1:]...)
}

// Contains reports whether name is in the catalog.
func (c *TitleCatalog) Contains(name string) bool {
	return c.index(name) >= 0
}

// Titles returns a copy of the catalog in matching order.
func (c *TitleCatalog) Titles() []string {
	return append([]string(nil), c.titles...)
}

// Len returns the number of titles.
func (c *TitleCatalog) Len() int {
	return len(c.titles)
}

func (c *TitleCatalog) index(name string) int {
	for i, t := range c.titles {
		if t == name {
			return i
		}
	}
	return -1
}

// inExcludedFolder matches the note's parent directory, with a trailing
// slash, against folder prefixes. Root notes have parent "/".
func inExcludedFolder(path string, folders []string) bool {
	if len(folders) == 0 {
		return false
	}
	parent := parentDirPrefix(path)
	for _, f := range folders {
		if strings.HasSuffix(f, "/") && strings.HasPrefix(parent, f) {
			return true
		}
	}
	return false
}

func sortLongestFirst(titles []string) {
	sort.SliceStable(titles, func(i, j int) bool {
		return utf8.RuneCountInString(titles[i]) > utf8.RuneCountInString(titles[j])
	})
}

// matchable reports whether a title can occur in note text.
func matchable(title string) bool {
	return title != "" && utf8.ValidString(title)
}
