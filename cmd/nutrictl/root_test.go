package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"nutrictl", "import-food-bank", "portions", "bodyfat"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected help to mention %q, got %q", want, out)
		}
	}
}

func TestPortionsCommand(t *testing.T) {
	out, err := run(t, "portions", "--calories", "300", "--protein", "50", "--carbs", "0", "--fat", "5")
	if err != nil {
		t.Fatalf("portions: %v", err)
	}
	if strings.TrimSpace(out) != "protein=1.5 carbs=0.0 fats=0.0" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestBodyfatRejectsMissingWeight(t *testing.T) {
	_, err := run(t, "bodyfat", "--gender", "male", "--age", "30", "--weight", "0",
		"--biceps", "10", "--triceps", "15", "--subscapular", "20", "--suprailiac", "15")
	if err == nil {
		t.Fatalf("expected an error for zero weight")
	}
}

func TestImportAndServings(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "cli.db")
	csvFile := filepath.Join(dir, "foods.csv")
	csv := "name,category,calories_per_unit,protein_units,grams_per_single_item\n" +
		"Chicken breast,protein,165,1,100\n"
	if err := os.WriteFile(csvFile, []byte(csv), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	out, err := run(t, "--sqlite", dbFile, "import-food-bank", csvFile)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 1 food bank items") {
		t.Fatalf("unexpected import output %q", out)
	}

	out, err = run(t, "--sqlite", dbFile, "servings", "--food", "1", "--measure", "serving", "--quantity", "2")
	if err != nil {
		t.Fatalf("servings: %v", err)
	}
	if !strings.Contains(out, "Chicken breast: 2.00 servings") || !strings.Contains(out, "330.0\t2.00") {
		t.Fatalf("unexpected servings output %q", out)
	}
}
