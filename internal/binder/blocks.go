package binder

import (
	"fmt"
	"strings"

	"github.com/hwdocs/go-md2tex/internal/metadata"
)

// block is a piece of the skeleton: literal text or a conditional.
type block struct {
	text string
	cond *conditional
}

type conditional struct {
	key       string
	then, alt []block
	inElse    bool
	offset    int
}

// parse builds the block tree with an explicit stack of open conditionals.
func parse(skeleton string) ([]block, error) {
	var root []block
	var stack []*conditional

	appendBlock := func(b block) {
		if n := len(stack); n > 0 {
			top := stack[n-1]
			if top.inElse {
				top.alt = append(top.alt, b)
			} else {
				top.then = append(top.then, b)
			}
			return
		}
		root = append(root, b)
	}

	last := 0
	for _, m := range directivePattern.FindAllStringSubmatchIndex(skeleton, -1) {
		if m[0] > last {
			appendBlock(block{text: skeleton[last:m[0]]})
		}
		last = m[1]

		switch {
		case m[2] >= 0:
			if len(stack) >= MaxNesting {
				return nil, fmt.Errorf("%w: %w at offset %d (limit %d)", ErrTemplateStructure, ErrNestingTooDeep, m[0], MaxNesting)
			}
			stack = append(stack, &conditional{key: skeleton[m[2]:m[3]], offset: m[0]})

		case m[4] >= 0:
			n := len(stack)
			if n == 0 || stack[n-1].inElse {
				return nil, fmt.Errorf("%w: %w at offset %d", ErrTemplateStructure, ErrUnexpectedElse, m[0])
			}
			stack[n-1].inElse = true

		default:
			n := len(stack)
			if n == 0 {
				return nil, fmt.Errorf("%w: %w at offset %d", ErrTemplateStructure, ErrUnexpectedEndif, m[0])
			}
			top := stack[n-1]
			stack = stack[:n-1]
			appendBlock(block{cond: top})
		}
	}

	if n := len(stack); n > 0 {
		top := stack[n-1]
		return nil, fmt.Errorf("%w: %w: $if(%s)$ at offset %d", ErrTemplateStructure, ErrUnterminatedIf, top.key, top.offset)
	}
	if last < len(skeleton) {
		root = append(root, block{text: skeleton[last:]})
	}
	return root, nil
}

// render writes the branch chosen for every conditional, recursively.
func render(b *strings.Builder, blocks []block, meta *metadata.Map) {
	for _, blk := range blocks {
		if blk.cond == nil {
			b.WriteString(blk.text)
			continue
		}
		v, ok := meta.Lookup(blk.cond.key)
		if ok && metadata.Truthy(v) {
			render(b, blk.cond.then, meta)
		} else {
			render(b, blk.cond.alt, meta)
		}
	}
}
