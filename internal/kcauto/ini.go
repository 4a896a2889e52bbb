// Package kcauto renders profiles in the INI dialect read by kancolle-auto.
package kcauto

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kagahq/kaga/internal/domain"
)

const (
	ConfigFilename = "config.ini"
	header         = "# Configuration automatically generated by KAGA"
	sectionLBAS    = "LBAS"
	// kcauto-kai keeps the LBAS keys in the combat section and has no
	// separate enabled flag.
	sectionCombat = "Combat"
)

// Render writes the LBAS section of p. The engine expects Python style
// booleans and comma separated lists.
func Render(w io.Writer, p domain.ProfileSnapshot) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, header)
	fmt.Fprintf(bw, "[%s]\n", sectionLBAS)
	fmt.Fprintf(bw, "Enabled = %s\n", formatBool(p.LBAS.Enabled))
	fmt.Fprintf(bw, "EnabledGroups = %s\n", joinInts(p.LBAS.Groups))
	for i, nodes := range p.LBAS.GroupNodes {
		fmt.Fprintf(bw, "Group%dNodes = %s\n", i+1, strings.Join(nodes, ","))
	}

	return bw.Flush()
}

// Parse reads the LBAS section from r. Other sections and unknown keys are
// ignored. Files in the kcauto-kai layout ([Combat] LBASGroups,
// LBASGroupNNodes) are read too; LBAS counts as enabled there when any
// group is set.
func Parse(r io.Reader) (domain.LBASSnapshot, error) {
	var (
		out        domain.LBASSnapshot
		section    string
		lineNo     int
		sawLBAS    bool
		sawCombat  bool
		combatLBAS domain.LBASSnapshot
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		isLBAS := strings.EqualFold(section, sectionLBAS)
		if !isLBAS && !strings.EqualFold(section, sectionCombat) {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return domain.LBASSnapshot{}, fmt.Errorf("line %d: expected key = value", lineNo)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if !isLBAS {
			found, err := parseCombatKey(&combatLBAS, key, value)
			if err != nil {
				return domain.LBASSnapshot{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			sawCombat = sawCombat || found
			continue
		}
		sawLBAS = true

		switch {
		case strings.EqualFold(key, "Enabled"):
			v, err := parseBool(value)
			if err != nil {
				return domain.LBASSnapshot{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			out.Enabled = v
		case strings.EqualFold(key, "EnabledGroups"):
			groups, err := splitInts(value)
			if err != nil {
				return domain.LBASSnapshot{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			out.Groups = groups
		default:
			group, ok := groupNodesKey(key)
			if !ok {
				continue
			}
			out.GroupNodes[group-1] = splitList(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return domain.LBASSnapshot{}, fmt.Errorf("read ini: %w", err)
	}
	if !sawLBAS && sawCombat {
		combatLBAS.Enabled = len(combatLBAS.Groups) > 0
		return combatLBAS, nil
	}

	return out, nil
}

func parseCombatKey(out *domain.LBASSnapshot, key, value string) (bool, error) {
	lower := strings.ToLower(key)
	if !strings.HasPrefix(lower, "lbas") {
		return false, nil
	}
	rest := key[len("lbas"):]
	if strings.EqualFold(rest, "Groups") {
		groups, err := splitInts(value)
		if err != nil {
			return false, err
		}
		out.Groups = groups
		return true, nil
	}
	group, ok := groupNodesKey(rest)
	if !ok {
		return false, nil
	}
	out.GroupNodes[group-1] = splitList(value)

	return true, nil
}

// Exporter writes profiles into a kancolle-auto installation directory.
type Exporter struct {
	Dir string
}

func (e Exporter) Path() string {
	return filepath.Join(e.Dir, ConfigFilename)
}

func (e Exporter) Export(p domain.ProfileSnapshot) error {
	if strings.TrimSpace(e.Dir) == "" {
		return fmt.Errorf("kancolle-auto directory is not configured")
	}
	var buf bytes.Buffer
	if err := Render(&buf, p); err != nil {
		return fmt.Errorf("render ini: %w", err)
	}
	if err := os.MkdirAll(e.Dir, 0o750); err != nil {
		return fmt.Errorf("create kancolle-auto dir: %w", err)
	}

	// Each export gets its own temp file so concurrent exports never rename
	// each other's output.
	tmp, err := os.CreateTemp(e.Dir, "config-*.ini.tmp")
	if err != nil {
		return fmt.Errorf("create temp ini: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp ini: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp ini: %w", err)
	}
	if err := os.Rename(tmpPath, e.Path()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp ini: %w", err)
	}

	return nil
}

func groupNodesKey(key string) (int, bool) {
	lower := strings.ToLower(key)
	if !strings.HasPrefix(lower, "group") || !strings.HasSuffix(lower, "nodes") {
		return 0, false
	}
	group, err := strconv.Atoi(lower[len("group") : len(lower)-len("nodes")])
	if err != nil || !domain.IsLBASGroup(group) {
		return 0, false
	}

	return group, true
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ",")
}

func splitInts(raw string) ([]int, error) {
	parts := splitList(raw)
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid group %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
