package assembler

import (
	"sort"
	"strings"
)

type anonLabel struct {
	id    int
	scope string
	pc    int64
}

// anonymousLabels keeps '+' and '-' labels ordered by line ID so references
// can count forwards or backwards from the referring line.
type anonymousLabels struct {
	forward  []anonLabel
	backward []anonLabel
}

func (a *anonymousLabels) add(line *SourceLine) {
	list := &a.backward
	if line.Label == "+" {
		list = &a.forward
	}
	i := sort.Search(len(*list), func(i int) bool { return (*list)[i].id >= line.ID })
	if i < len(*list) && (*list)[i].id == line.ID {
		(*list)[i].pc = line.PC
		return
	}
	*list = append(*list, anonLabel{})
	copy((*list)[i+1:], (*list)[i:])
	(*list)[i] = anonLabel{id: line.ID, scope: line.Scope, pc: line.PC}
}

func visibleFrom(labelScope, refScope string) bool {
	return labelScope == "" || labelScope == refScope || strings.HasPrefix(refScope, labelScope+".")
}

// resolve finds the n-th '+' label after line or the n-th '-' label at or
// before it, where n is the length of word.
func (a *anonymousLabels) resolve(word string, line *SourceLine) (int64, bool) {
	count := len(word)
	if word[0] == '+' {
		start := sort.Search(len(a.forward), func(i int) bool { return a.forward[i].id > line.ID })
		for _, l := range a.forward[start:] {
			if !visibleFrom(l.scope, line.Scope) {
				continue
			}
			if count--; count == 0 {
				return l.pc, true
			}
		}
		return 0, false
	}
	end := sort.Search(len(a.backward), func(i int) bool { return a.backward[i].id > line.ID })
	for i := end - 1; i >= 0; i-- {
		l := a.backward[i]
		if !visibleFrom(l.scope, line.Scope) {
			continue
		}
		if count--; count == 0 {
			return l.pc, true
		}
	}
	return 0, false
}
