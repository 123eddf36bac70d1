// Package macro renders simulation macro templates.
//
// A template is plain text with the placeholder tokens xxx, yyy, zzz and ddd.
// Rendering replaces the first occurrence of each token on every line with the
// matching point value. The substitution is purely textual: nothing checks that
// the result is valid in the macro language.
package macro

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattsolo1/grove-sweep/pkg/params"
)

// Placeholder tokens recognised in templates.
const (
	TokenX = "xxx"
	TokenY = "yyy"
	TokenZ = "zzz"
	TokenD = "ddd"
)

// Tokens lists the placeholders in substitution order.
var Tokens = []string{TokenX, TokenY, TokenZ, TokenD}

// Template is a macro template held as lines, each keeping its terminator.
type Template struct {
	Path  string
	Lines []string
}

// Load reads the template at path.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Parse(path, string(data)), nil
}

// Parse splits content into lines without dropping line terminators.
func Parse(path, content string) *Template {
	lines := strings.SplitAfter(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return &Template{Path: path, Lines: lines}
}

// value returns the formatted point value for a token.
func value(token string, p params.Point) string {
	switch token {
	case TokenX:
		return params.FormatFloat(p.X)
	case TokenY:
		return params.FormatFloat(p.Y)
	case TokenZ:
		return params.FormatConst(p.Z)
	case TokenD:
		return params.FormatConst(p.D)
	}
	return token
}

// ReplaceTokens substitutes the first occurrence of each token in line.
func ReplaceTokens(line string, p params.Point) string {
	for _, tok := range Tokens {
		if strings.Contains(line, tok) {
			line = strings.Replace(line, tok, value(tok, p), 1)
		}
	}
	return line
}

// Render returns the template lines with p substituted, in original order.
func (t *Template) Render(p params.Point) []string {
	out := make([]string, len(t.Lines))
	for i, line := range t.Lines {
		out[i] = ReplaceTokens(line, p)
	}
	return out
}

// RenderString is Render joined back into a single text.
func (t *Template) RenderString(p params.Point) string {
	return strings.Join(t.Render(p), "")
}

// UsedTokens reports which placeholders appear anywhere in the template.
func (t *Template) UsedTokens() []string {
	var used []string
	for _, tok := range Tokens {
		for _, line := range t.Lines {
			if strings.Contains(line, tok) {
				used = append(used, tok)
				break
			}
		}
	}
	return used
}

// Write stores rendered lines at path, replacing whatever was there.
func Write(path string, lines []string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create macro directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), 0644); err != nil {
		return fmt.Errorf("write macro: %w", err)
	}
	return nil
}

// BaseName is the template file name up to its first dot:
// "mac/co60.source.mac" gives "co60".
func BaseName(path string) string {
	name := filepath.Base(path)
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}
