// Package langdetect guesses the language of a code block's contents.
//
// Code blocks in generated answers often arrive without a language tag; the
// highlighter uses Detect to label them so a client-side highlighter can
// pick the right grammar.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language tags returned by Detect.
const (
	LangGo         = "go"
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangJSON       = "json"
	LangYAML       = "yaml"
	LangHTML       = "html"
	LangSQL        = "sql"
	LangRust       = "rust"
	LangDockerfile = "dockerfile"
	LangLaTeX      = "latex"
	LangBash       = "bash"
	LangText       = "text"
)

// classifierCandidates limits the enry classifier to languages that show up
// in prose answers.
var classifierCandidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Markdown", "Dockerfile", "TeX",
}

// patterns are tried in order; the first match wins.
var patterns = []func(content, trimmed []byte) string{
	detectGo,
	detectLaTeX,
	detectPython,
	detectHTML,
	detectJSON,
	detectDockerfile,
	detectSQL,
	detectRust,
	detectJavaScript,
	detectYAML,
}

// Detect returns the language tag for code content, or LangText when
// nothing is confident enough.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return LangText
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	trimmed := bytes.TrimSpace(content)
	for _, detect := range patterns {
		if lang := detect(content, trimmed); lang != "" {
			return lang
		}
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}

	return LangText
}

func detectGo(_, trimmed []byte) string {
	if bytes.HasPrefix(trimmed, []byte("package ")) {
		return LangGo
	}
	return ""
}

// detectLaTeX matches blocks of TeX source, which are common in math
// answers that show the markup itself.
func detectLaTeX(_, trimmed []byte) string {
	if bytes.HasPrefix(trimmed, []byte(`\documentclass`)) ||
		bytes.HasPrefix(trimmed, []byte(`\begin{`)) ||
		bytes.HasPrefix(trimmed, []byte(`\usepackage`)) ||
		(bytes.Contains(trimmed, []byte(`\frac{`)) && !bytes.ContainsAny(trimmed, ";")) {
		return LangLaTeX
	}
	return ""
}

func detectPython(content, _ []byte) string {
	s := string(content)
	if strings.Contains(s, "def ") && strings.Contains(s, "):") {
		return LangPython
	}
	// Go imports use "import (".
	if strings.Contains(s, "import ") && !strings.Contains(s, "import (") {
		if strings.Contains(s, "from ") || strings.HasPrefix(strings.TrimSpace(s), "import ") {
			return LangPython
		}
	}
	if strings.Contains(s, "__name__") || strings.Contains(s, "__main__") {
		return LangPython
	}
	return ""
}

func detectHTML(_, trimmed []byte) string {
	lower := bytes.ToLower(trimmed)
	for _, marker := range []string{"<!doctype html", "<html", "<head>", "<body>"} {
		if bytes.Contains(lower, []byte(marker)) {
			return LangHTML
		}
	}
	return ""
}

func detectJSON(_, trimmed []byte) string {
	if (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
		bytes.Contains(trimmed, []byte(`"`)) {
		return LangJSON
	}
	return ""
}

func detectDockerfile(content, trimmed []byte) string {
	if bytes.HasPrefix(trimmed, []byte("FROM ")) ||
		(bytes.Contains(content, []byte("\nFROM ")) && bytes.Contains(content, []byte("\nRUN "))) ||
		(bytes.Contains(content, []byte("WORKDIR ")) && bytes.Contains(content, []byte("COPY "))) {
		return LangDockerfile
	}
	return ""
}

func detectSQL(_, trimmed []byte) string {
	upper := strings.ToUpper(string(trimmed))
	for _, verb := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
		if strings.HasPrefix(upper, verb) {
			return LangSQL
		}
	}
	return ""
}

func detectRust(content, _ []byte) string {
	s := string(content)
	if strings.Contains(s, "fn main()") ||
		strings.Contains(s, "println!") ||
		strings.Contains(s, "let mut ") {
		return LangRust
	}
	return ""
}

func detectJavaScript(content, _ []byte) string {
	s := string(content)
	if strings.Contains(s, "=>") ||
		strings.Contains(s, "const ") ||
		strings.Contains(s, "let ") ||
		strings.Contains(s, "console.log") {
		return LangJavaScript
	}
	return ""
}

// detectYAML counts key: value lines and root list items.
func detectYAML(content, _ []byte) string {
	keys := 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.Contains(line, []byte("(")) &&
			!bytes.Contains(line, []byte("{")) &&
			!bytes.HasPrefix(line, []byte(`"`)) {
			keys++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			keys++
		}
	}
	if keys >= 2 {
		return LangYAML
	}
	return ""
}

// normalize converts enry language names to fence tags.
func normalize(lang string) string {
	switch lang {
	case "Shell":
		return LangBash
	case "TeX":
		return LangLaTeX
	default:
		return strings.ToLower(lang)
	}
}
