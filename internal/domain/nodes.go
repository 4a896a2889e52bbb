package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidNodes lists every map node name the automation engine accepts:
// numbered nodes 1-12, lettered nodes A-Z, then Z1-Z9 and ZZ1-ZZ3.
var ValidNodes = buildValidNodes()

var validNodeSet = func() map[string]struct{} {
	out := make(map[string]struct{}, len(ValidNodes))
	for _, node := range ValidNodes {
		out[node] = struct{}{}
	}
	return out
}()

func buildValidNodes() []string {
	nodes := make([]string, 0, 12+26+9+3)
	for i := 1; i <= 12; i++ {
		nodes = append(nodes, strconv.Itoa(i))
	}
	for c := 'A'; c <= 'Z'; c++ {
		nodes = append(nodes, string(c))
	}
	for i := 1; i <= 9; i++ {
		nodes = append(nodes, "Z"+strconv.Itoa(i))
	}
	for i := 1; i <= 3; i++ {
		nodes = append(nodes, "ZZ"+strconv.Itoa(i))
	}

	return nodes
}

func IsValidNode(node string) bool {
	_, ok := validNodeSet[node]
	return ok
}

// NormalizeNodes trims and upper-cases node names, dropping blanks, and
// fails on the first name the engine would not recognize.
func NormalizeNodes(nodes []string) ([]string, error) {
	out := make([]string, 0, len(nodes))
	for _, raw := range nodes {
		node := strings.ToUpper(strings.TrimSpace(raw))
		if node == "" {
			continue
		}
		if !IsValidNode(node) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNode, raw)
		}
		out = append(out, node)
	}

	return out, nil
}
