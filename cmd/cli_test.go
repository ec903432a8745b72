package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/depdash-cli/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const surveyCSV = `id,gender,age,depression,sleep_duration,study_satisfaction,academic_pressure,cgpa,financial_stress,work_pressure,suicidal_thoughts
1,Male,22,1,5,2,5,8.97,1,0,Yes
2,Female,24,0,7,5,2,5.90,2,0,No
3,Male,31,0,8,4,3,7.03,1,0,No
4,,28,1,6,3,4,5.59,5,0,Yes
`

// resetFlags clears values and Changed state left over from a previous invocation.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace([]string{})
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args and capture stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// fixture writes the survey CSV and an empty config into a temp HOME.
func fixture(t *testing.T) (csvPath, cfgPath string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	csvPath = filepath.Join(home, "dataset_depressao_estudantes.csv")
	if err := os.WriteFile(csvPath, []byte(surveyCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return csvPath, filepath.Join(home, "config.yaml")
}

func TestCLI_Genders(t *testing.T) {
	csv, cfgPath := fixture(t)
	out := mustRun(t, "genders", "--dataset", csv, "--config", cfgPath)
	for _, want := range []string{"4 records", "Male", "Female", dataset.MissingGenderLabel} {
		if !strings.Contains(out, want) {
			t.Fatalf("genders output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "genders", "--json", "--dataset", csv, "--config", cfgPath)
	var counts []dataset.GenderCount
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(counts) != 3 || counts[0].Gender != "Male" || counts[0].Count != 2 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestCLI_ViewMarkdown(t *testing.T) {
	csv, cfgPath := fixture(t)
	out := mustRun(t, "view", "--page", "sono", "--gender", "Male", "--dataset", csv, "--config", cfgPath)
	if !strings.Contains(out, "Registros: 2 de 4") || !strings.Contains(out, "Depressão por Gênero") {
		t.Fatalf("unexpected view:\n%s", out)
	}

	out = mustRun(t, "view", "--page", "tabela", "--gender", dataset.MissingGenderLabel, "--dataset", csv, "--config", cfgPath)
	if !strings.Contains(out, "Registros: 1 de 4") {
		t.Fatalf("missing-gender label should select the blank value:\n%s", out)
	}

	out = mustRun(t, "view", "--no-gender", "--dataset", csv, "--config", cfgPath)
	if !strings.Contains(out, "Registros: 0 de 4") || !strings.Contains(out, "Sem dados para a seleção atual.") {
		t.Fatalf("unexpected empty view:\n%s", out)
	}
}

func TestCLI_ViewJSONToFile(t *testing.T) {
	csv, cfgPath := fixture(t)
	dst := filepath.Join(t.TempDir(), "view.json")
	out := mustRun(t, "view", "--page", "trabalho", "--only-depressed", "--json", "-o", dst, "--dataset", csv, "--config", cfgPath)
	if !strings.Contains(out, "✓ Wrote trabalho view") {
		t.Fatalf("unexpected output: %s", out)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	var v struct {
		Count         int  `json:"count"`
		OnlyDepressed bool `json:"only_depressed"`
		Panels        []struct {
			Kind string `json:"kind"`
		} `json:"panels"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Count != 4 || !v.OnlyDepressed || len(v.Panels) != 2 || v.Panels[0].Kind != "box" {
		t.Fatalf("unexpected view: %+v", v)
	}
}

func TestCLI_ViewUnknownPage(t *testing.T) {
	csv, cfgPath := fixture(t)
	_, err := runCmd(t, "view", "--page", "nope", "--dataset", csv, "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "unknown page") || !strings.Contains(err.Error(), "interativos") {
		t.Fatalf("expected unknown page error, got %v", err)
	}
}

func TestCLI_MissingDatasetIsFatal(t *testing.T) {
	_, cfgPath := fixture(t)
	_, err := runCmd(t, "view", "--dataset", filepath.Join(t.TempDir(), "absent.csv"), "--config", cfgPath)
	if !errors.Is(err, dataset.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestCLI_Analyze(t *testing.T) {
	csv, cfgPath := fixture(t)
	out := mustRun(t, "analyze", "--group-by", "depression_label", "--correlations", "--dataset", csv, "--config", cfgPath)
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 4", "[GROUP-BY SUMMARY]", "depression_label=Sim", "[CORRELATIONS]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("analyze output missing %q:\n%s", want, out)
		}
	}

	dst := filepath.Join(t.TempDir(), "summary.md")
	mustRun(t, "analyze", "--gender", "Female", "-o", dst, "--dataset", csv, "--config", cfgPath)
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "Rows: 1 of 4") || !strings.Contains(string(b), "Genders: Female") {
		t.Fatalf("unexpected summary:\n%s", b)
	}

	if _, err := runCmd(t, "analyze", "--decimal", "x", "--dataset", csv, "--config", cfgPath); err == nil {
		t.Fatalf("expected --decimal error")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	csv, cfgPath := fixture(t)
	mustRun(t, "config", "set", "dataset_path", csv, "--config", cfgPath)
	mustRun(t, "config", "set", "show_missing_gender", "false", "--config", cfgPath)
	out := mustRun(t, "config", "show", "--config", cfgPath)
	if !strings.Contains(out, "dataset_path: "+csv) || !strings.Contains(out, "show_missing_gender: false") {
		t.Fatalf("unexpected config:\n%s", out)
	}

	// the blank gender leaves the domain once the option is off
	out = mustRun(t, "genders", "--config", cfgPath)
	if strings.Contains(out, dataset.MissingGenderLabel) {
		t.Fatalf("blank gender should be hidden:\n%s", out)
	}

	if _, err := runCmd(t, "config", "set", "log_format", "xml", "--config", cfgPath); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := runCmd(t, "config", "set", "nope", "1", "--config", cfgPath); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
