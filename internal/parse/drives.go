package parse

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/darshan-rambhia/whm/internal/model"
)

// lsblk columns after the device name: MAJ:MIN RM SIZE RO TYPE [MOUNTPOINT].
const lsblkColumns = 6

type heritageEntry struct {
	node  *model.DriveNode
	depth int
}

// DriveTree parses header-less `lsblk` output into a tree of block devices
// keyed by name. Nesting is read from the tree-drawing prefix before each
// name: every two prefix characters ("├─", "└─", "│ ", "  ") are one level.
func DriveTree(text string) (map[string]*model.DriveNode, error) {
	roots := make(map[string]*model.DriveNode)
	var heritage []heritageEntry

	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		perr := func(err error) error {
			return &ParseError{Parser: "drives", Line: i + 1, Text: line, Err: err}
		}

		prefix, rest := splitTreePrefix(line)
		if prefix%2 != 0 {
			return nil, perr(ErrOddIndent)
		}
		depth := prefix / 2

		node, err := parseDriveLine(rest)
		if err != nil {
			return nil, perr(err)
		}

		switch {
		case depth == 0:
			heritage = heritage[:0]
			roots[node.Name] = node
		case len(heritage) == 0:
			return nil, perr(ErrOrphanChild)
		case depth > heritage[len(heritage)-1].depth+1:
			return nil, perr(ErrDepthJump)
		default:
			for heritage[len(heritage)-1].depth >= depth {
				heritage = heritage[:len(heritage)-1]
			}
			parent := heritage[len(heritage)-1].node
			if parent.Children == nil {
				parent.Children = make(map[string]*model.DriveNode)
			}
			parent.Children[node.Name] = node
		}
		heritage = append(heritage, heritageEntry{node: node, depth: depth})
	}
	return roots, nil
}

// splitTreePrefix counts the runes before the first letter or digit and
// returns that count with the remainder of the line.
func splitTreePrefix(line string) (int, string) {
	count := 0
	for i, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return count, line[i:]
		}
		count++
	}
	return count, ""
}

func parseDriveLine(rest string) (*model.DriveNode, error) {
	name, cols, _ := strings.Cut(rest, " ")
	if name == "" {
		return nil, fmt.Errorf("missing device name")
	}
	fields, ok := splitBounded(cols, lsblkColumns)
	if !ok {
		return nil, ErrShortRow
	}
	// fields: MAJ:MIN, RM, SIZE, RO, TYPE, MOUNTPOINT
	return &model.DriveNode{
		Name:  name,
		Size:  fields[2],
		Type:  fields[4],
		Mount: fields[5],
	}, nil
}
