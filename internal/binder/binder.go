// Package binder fills a LaTeX template skeleton from datasheet metadata.
//
// Two constructs are recognised:
//
//	$name$ or $a.b.c$                       value substitution
//	$if(name)$ ... [$else$ ...] $endif$      conditional, nesting allowed
//
// Conditionals are resolved first over the parsed block tree, then a single
// scan substitutes placeholders. Substituted values are never scanned again,
// so binding an already bound document returns it unchanged.
package binder

import (
	"errors"
	"regexp"
	"strings"

	"github.com/hwdocs/go-md2tex/internal/metadata"
)

// Sentinel errors for malformed skeletons.
var (
	ErrTemplateStructure = errors.New("malformed template")
	ErrUnterminatedIf    = errors.New("unterminated $if$ block")
	ErrUnexpectedElse    = errors.New("$else$ outside a conditional")
	ErrUnexpectedEndif   = errors.New("$endif$ without matching $if$")
	ErrNestingTooDeep    = errors.New("conditional nesting too deep")
)

// MaxNesting bounds conditional depth.
const MaxNesting = 32

// BodyKey is the metadata key holding the converted LaTeX body.
const BodyKey = "body"

const keyPattern = `[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*`

var (
	directivePattern   = regexp.MustCompile(`\$(?:if\((` + keyPattern + `)\)|(else)|(endif))\$`)
	placeholderPattern = regexp.MustCompile(`\$(` + keyPattern + `)\$`)
)

// Options controls value rendering.
type Options struct {
	// Defaults supply values for keys missing from the metadata.
	Defaults map[string]string
	// Escape, when set, is applied to every value except raw keys.
	Escape func(string) string
	// RawKeys are inserted verbatim. BodyKey is always raw.
	RawKeys []string
}

// Bind resolves conditionals and placeholders in skeleton.
func Bind(skeleton string, meta *metadata.Map, opts Options) (string, error) {
	blocks, err := parse(skeleton)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(skeleton))
	render(&b, blocks, meta)

	return substitute(b.String(), meta, opts), nil
}

// Validate reports structural errors in skeleton without binding it.
func Validate(skeleton string) error {
	_, err := parse(skeleton)
	return err
}

// Placeholders lists the distinct placeholder keys in skeleton, in order of
// first appearance. Keys inside conditionals are included.
func Placeholders(skeleton string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(skeleton, -1) {
		if m[1] == "else" || m[1] == "endif" {
			continue
		}
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

func substitute(text string, meta *metadata.Map, opts Options) string {
	raw := map[string]bool{BodyKey: true}
	for _, k := range opts.RawKeys {
		raw[k] = true
	}

	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := match[1 : len(match)-1]

		// A null value counts as missing; an explicit "" does not.
		var value string
		if v, ok := meta.Lookup(key); ok && v != nil {
			value = metadata.Format(v)
		} else if d, ok := opts.Defaults[key]; ok {
			value = d
		}

		if opts.Escape != nil && !raw[key] {
			value = opts.Escape(value)
		}
		return value
	})
}
