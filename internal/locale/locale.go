// Package locale holds the user-facing strings of mdlinkify, keyed by
// language tag.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Key identifies a message.
type Key string

const (
	ConvertAll       Key = "convert_all"
	NoMatches        Key = "no_matches"
	ConvertedSummary Key = "converted_summary" // %d mentions, %d notes
	DryRunSummary    Key = "dry_run_summary"   // %d mentions, %d notes
	NothingToConvert Key = "nothing_to_convert"
	IndexedSummary   Key = "indexed_summary" // %d notes
	Watching         Key = "watching"        // %s vault
	AutoConverted    Key = "auto_converted"  // %d mentions, %s note
	ConvertShort     Key = "convert_short"
)

var supported = []language.Tag{
	language.English,
	language.Chinese,
}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[Key]string{
	language.English: {
		ConvertAll:       "Convert All to Wiki Links",
		NoMatches:        "No unlinked titles",
		ConvertedSummary: "Converted %d mentions in %d notes",
		DryRunSummary:    "Would convert %d mentions in %d notes",
		NothingToConvert: "Nothing to convert",
		IndexedSummary:   "Indexed %d notes",
		Watching:         "Watching %s (Ctrl+C to stop)",
		AutoConverted:    "Auto-converted %d mentions in %s",
		ConvertShort:     "Convert all title mentions to wiki links",
	},
	language.Chinese: {
		ConvertAll:       "全部转换为维基链接",
		NoMatches:        "没有未链接的标题",
		ConvertedSummary: "已在 %[2]d 篇笔记中转换 %[1]d 处提及",
		DryRunSummary:    "将在 %[2]d 篇笔记中转换 %[1]d 处提及",
		NothingToConvert: "没有需要转换的内容",
		IndexedSummary:   "已索引 %d 篇笔记",
		Watching:         "正在监视 %s（Ctrl+C 停止）",
		AutoConverted:    "已自动转换 %[2]s 中的 %[1]d 处提及",
		ConvertShort:     "将所有标题提及转换为维基链接",
	},
}

// Table is the message set for one language.
type Table struct {
	tag language.Tag
}

// For returns the table that best matches lang. Empty or unparsable tags and
// unsupported languages get English.
func For(lang string) *Table {
	tag, err := language.Parse(normalize(lang))
	if err != nil {
		return &Table{tag: language.English}
	}
	_, i, _ := matcher.Match(tag)
	return &Table{tag: supported[i]}
}

// Resolve returns the table for the first non-empty candidate, in order of
// precedence (flag, config, environment).
func Resolve(candidates ...string) *Table {
	for _, c := range candidates {
		if normalize(c) != "" {
			return For(c)
		}
	}
	return For("")
}

// Tag returns the table's language.
func (t *Table) Tag() language.Tag {
	return t.tag
}

// T returns the message for key, falling back to English and then to the key.
func (t *Table) T(key Key) string {
	if msg, ok := messages[t.tag][key]; ok {
		return msg
	}
	if msg, ok := messages[language.English][key]; ok {
		return msg
	}
	return string(key)
}

// normalize turns POSIX locale values such as "zh_CN.UTF-8" into a tag.
func normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "C" || lang == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(lang, "_", "-")
}
