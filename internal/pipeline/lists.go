package pipeline

import (
	"regexp"
	"strings"
)

type listKind int

const (
	notList listKind = iota
	unordered
	ordered
)

var orderedMarker = regexp.MustCompile(`^\s*\d+\.\s`)

var listEnvironments = map[listKind]string{
	unordered: "itemize",
	ordered:   "enumerate",
}

func listStage(doc Document) Document {
	lines := splitLines(doc)
	out := make([]line, 0, len(lines))
	open := notList

	closeList := func() {
		if open != notList {
			out = append(out, line{markup(`\end{` + listEnvironments[open] + "}")})
			open = notList
		}
	}

	for _, l := range lines {
		kind, item := listItem(l)
		if kind == notList {
			closeList()
			out = append(out, l)
			continue
		}
		if kind != open {
			closeList()
			out = append(out, line{markup(`\begin{` + listEnvironments[kind] + "}")})
			open = kind
		}
		out = append(out, append(line{markup(`\item `)}, item...))
	}
	closeList()
	return joinLines(out)
}

// listItem classifies l and returns the item spans with the marker removed.
func listItem(l line) (listKind, line) {
	first, ok := l.leadingProse()
	if !ok {
		return notList, nil
	}

	var kind listKind
	var rest string
	lead := strings.TrimLeft(first, " \t")
	switch {
	case strings.HasPrefix(lead, "- "), strings.HasPrefix(lead, "* "):
		kind, rest = unordered, lead[2:]
	default:
		loc := orderedMarker.FindStringIndex(first)
		if loc == nil {
			return notList, nil
		}
		kind, rest = ordered, first[loc[1]:]
	}

	item := make(line, 0, len(l))
	item = append(item, prose(strings.TrimLeft(rest, " \t")))
	item = append(item, l[1:]...)
	if last := len(item) - 1; item[last].Kind == Prose {
		item[last].Text = strings.TrimRight(item[last].Text, " \t")
	}
	return kind, item
}
