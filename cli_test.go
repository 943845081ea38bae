package main

import (
	"testing"

	"ilopt/analysis"
)

func TestParseArgsDashPrefixedOptions(t *testing.T) {
	args, err := parseArgs([]string{"-striplocalsinit=out", "-filter=Foo.*", "-v", "-concurrency=4", "asm.json"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if args.mode != analysis.ModeOut {
		t.Errorf("mode = %s, want out", args.mode)
	}
	if args.filter == nil {
		t.Error("filter not set")
	}
	if !args.verbose {
		t.Error("verbose not set")
	}
	if args.concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", args.concurrency)
	}
	if len(args.assemblies) != 1 || args.assemblies[0] != "asm.json" {
		t.Errorf("assemblies = %v, want [asm.json]", args.assemblies)
	}
}

func TestParseArgsSlashPrefixedOptions(t *testing.T) {
	args, err := parseArgs([]string{"/striplocalsinit:all", "/f:Bar", "asm.json"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if args.mode != analysis.ModeAll {
		t.Errorf("mode = %s, want all", args.mode)
	}
	if args.filter == nil {
		t.Error("filter not set")
	}
}

func TestParseArgsShortFlags(t *testing.T) {
	args, err := parseArgs([]string{"-striplocalsinit=none", "-v", "asm.json"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !args.verbose {
		t.Error("verbose not set by -v")
	}
}

func TestParseArgsDefaultConcurrency(t *testing.T) {
	args, err := parseArgs([]string{"-striplocalsinit=none", "asm.json"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if args.concurrency != 1 {
		t.Errorf("concurrency = %d, want default 1", args.concurrency)
	}
}

func TestParseArgsBadConcurrency(t *testing.T) {
	_, err := parseArgs([]string{"-striplocalsinit=none", "-concurrency=nope", "asm.json"})
	if err == nil {
		t.Fatal("expected error for non-numeric -concurrency value")
	}
}

func TestParseArgsMissingOptimization(t *testing.T) {
	_, err := parseArgs([]string{"asm.json"})
	if err == nil {
		t.Fatal("expected error when no optimization is specified")
	}
}

func TestParseArgsMissingAssembly(t *testing.T) {
	_, err := parseArgs([]string{"-striplocalsinit=out"})
	if err == nil {
		t.Fatal("expected error when no assembly paths are given")
	}
}
