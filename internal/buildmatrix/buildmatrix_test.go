package buildmatrix

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kbfirmware/kbsetup/internal/hardware"
)

func writeMatrix(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Include []Entry `yaml:"include"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("result is not valid YAML: %v\n%s", err, data)
	}
	return doc.Include
}

func TestEntries(t *testing.T) {
	tests := []struct {
		name string
		sel  *hardware.Selection
		want []Entry
	}{
		{
			"standalone board",
			&hardware.Selection{BoardIDs: []string{"planck"}},
			[]Entry{{Board: "planck"}},
		},
		{
			"split board",
			&hardware.Selection{BoardIDs: []string{"glove80_lh", "glove80_rh"}},
			[]Entry{{Board: "glove80_lh"}, {Board: "glove80_rh"}},
		},
		{
			"split shield on one controller",
			&hardware.Selection{
				BoardIDs:  []string{"nice_nano"},
				ShieldIDs: []string{"corne_left", "corne_right"},
			},
			[]Entry{
				{Shield: "corne_left", Board: "nice_nano"},
				{Shield: "corne_right", Board: "nice_nano"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Entries(tt.sel)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Entries() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddAppends(t *testing.T) {
	path := writeMatrix(t, "include:\n  - board: planck\n")

	err := Add(path, []Entry{{Shield: "corne_left", Board: "nice_nano"}})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got := readEntries(t, path)
	want := []Entry{
		{Board: "planck"},
		{Shield: "corne_left", Board: "nice_nano"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("include = %v, want %v", got, want)
	}
}

func TestAddSkipsDuplicates(t *testing.T) {
	path := writeMatrix(t, "include:\n  - shield: corne_left\n    board: nice_nano\n")

	err := Add(path, []Entry{
		{Shield: "corne_left", Board: "nice_nano"},
		{Shield: "corne_right", Board: "nice_nano"},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got := readEntries(t, path)
	want := []Entry{
		{Shield: "corne_left", Board: "nice_nano"},
		{Shield: "corne_right", Board: "nice_nano"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("include = %v, want %v", got, want)
	}
}

func TestAddCreatesIncludeList(t *testing.T) {
	path := writeMatrix(t, "# build matrix\n{}\n")

	if err := Add(path, []Entry{{Board: "planck"}}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got := readEntries(t, path)
	if !slices.Equal(got, []Entry{{Board: "planck"}}) {
		t.Errorf("include = %v, want [{planck}]", got)
	}
}

func TestAddPreservesLeadingComments(t *testing.T) {
	content := "# This file generates the GitHub Actions matrix.\n" +
		"# For documentation see the project wiki.\n" +
		"---\n" +
		"include:\n" +
		"  - board: planck\n"
	path := writeMatrix(t, content)

	if err := Add(path, []Entry{{Board: "nice60"}}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "# This file generates the GitHub Actions matrix.") {
		t.Errorf("leading comment lost:\n%s", out)
	}
	if !strings.Contains(out, "# For documentation see the project wiki.") {
		t.Errorf("leading comment lost:\n%s", out)
	}

	got := readEntries(t, path)
	want := []Entry{{Board: "planck"}, {Board: "nice60"}}
	if !slices.Equal(got, want) {
		t.Errorf("include = %v, want %v", got, want)
	}
}

func TestAddMissingFile(t *testing.T) {
	err := Add(filepath.Join(t.TempDir(), "build.yaml"), []Entry{{Board: "planck"}})
	if err == nil {
		t.Error("Add() expected error for missing file")
	}
}

func TestAddRejectsNonMapping(t *testing.T) {
	path := writeMatrix(t, "- just\n- a\n- list\n")

	if err := Add(path, []Entry{{Board: "planck"}}); err == nil {
		t.Error("Add() expected error for non-mapping document")
	}
}
