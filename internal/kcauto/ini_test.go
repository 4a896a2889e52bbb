package kcauto

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/kagahq/kaga/internal/domain"
)

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, domain.ProfileSnapshot{
		Name: "event",
		LBAS: domain.LBASSnapshot{
			Enabled:    true,
			Groups:     []int{1, 3},
			GroupNodes: [3][]string{{"A", "B"}, nil, {"ZZ1"}},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := strings.Join([]string{
		"# Configuration automatically generated by KAGA",
		"[LBAS]",
		"Enabled = True",
		"EnabledGroups = 1,3",
		"Group1Nodes = A,B",
		"Group2Nodes = ",
		"Group3Nodes = ZZ1",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("unexpected ini:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseIgnoresOtherSections(t *testing.T) {
	raw := `
; comment
[General]
Program = Chrome
Enabled = True

[lbas]
enabled = false
EnabledGroups = 2, 5
Group2Nodes = C , D
Group9Nodes = E
Unknown = x
`
	got, err := Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Enabled {
		t.Fatalf("expected lbas section value to win, got enabled")
	}
	if !slices.Equal(got.Groups, []int{2, 5}) {
		t.Fatalf("unexpected groups: %v", got.Groups)
	}
	if !slices.Equal(got.GroupNodes[1], []string{"C", "D"}) || got.GroupNodes[0] != nil || got.GroupNodes[2] != nil {
		t.Fatalf("unexpected nodes: %v", got.GroupNodes)
	}
}

func TestParseRejectsMalformedValues(t *testing.T) {
	for _, raw := range []string{
		"[LBAS]\nEnabled = maybe\n",
		"[LBAS]\nEnabledGroups = one\n",
		"[LBAS]\nEnabled\n",
	} {
		if _, err := Parse(strings.NewReader(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestExporterWritesConfigFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "kcauto")
	exporter := Exporter{Dir: dir}

	snap := domain.ProfileSnapshot{
		Name: "x",
		LBAS: domain.LBASSnapshot{Enabled: true, Groups: []int{2}},
	}
	if err := exporter.Export(snap); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(exporter.Path())
	if err != nil {
		t.Fatalf("open exported file: %v", err)
	}
	defer f.Close()

	got, err := Parse(f)
	if err != nil {
		t.Fatalf("parse exported file: %v", err)
	}
	if !got.Enabled || !slices.Equal(got.Groups, []int{2}) {
		t.Fatalf("unexpected exported lbas: %+v", got)
	}
}

func TestExporterRequiresDir(t *testing.T) {
	if err := (Exporter{}).Export(domain.ProfileSnapshot{}); err == nil {
		t.Fatalf("expected missing dir to fail")
	}
}

func TestExporterConcurrentExports(t *testing.T) {
	dir := t.TempDir()
	exporter := Exporter{Dir: dir}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			snap := domain.ProfileSnapshot{
				Name: "x",
				LBAS: domain.LBASSnapshot{Enabled: true, Groups: []int{i%3 + 1}},
			}
			errs <- exporter.Export(snap)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent export: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read export dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != ConfigFilename {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only %s to remain, got %v", ConfigFilename, names)
	}

	raw, err := os.ReadFile(exporter.Path())
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	got, err := Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parse exported file: %v", err)
	}
	if !got.Enabled || len(got.Groups) != 1 {
		t.Fatalf("unexpected exported lbas: %+v", got)
	}
}

func TestParseCombatSectionLayout(t *testing.T) {
	in := `[General]
Enabled = True
[Combat]
Enabled = True
CombatNodes = 5
LBASGroups = 1,3
LBASGroup1Nodes = A,B
LBASGroup3Nodes = Z1
`
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Enabled {
		t.Fatalf("expected lbas enabled when groups are set")
	}
	if !slices.Equal(got.Groups, []int{1, 3}) {
		t.Fatalf("unexpected groups: %v", got.Groups)
	}
	if !slices.Equal(got.GroupNodes[0], []string{"A", "B"}) || len(got.GroupNodes[1]) != 0 || !slices.Equal(got.GroupNodes[2], []string{"Z1"}) {
		t.Fatalf("unexpected group nodes: %v", got.GroupNodes)
	}

	empty, err := Parse(strings.NewReader("[Combat]\nLBASGroups =\n"))
	if err != nil {
		t.Fatalf("parse empty groups: %v", err)
	}
	if empty.Enabled {
		t.Fatalf("expected lbas disabled without groups")
	}
}

func TestParsePrefersLBASSection(t *testing.T) {
	in := `[Combat]
LBASGroups = 1
[LBAS]
Enabled = False
EnabledGroups = 2
`
	got, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Enabled || !slices.Equal(got.Groups, []int{2}) {
		t.Fatalf("expected [LBAS] values to win, got %+v", got)
	}
}
