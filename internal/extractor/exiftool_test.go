package extractor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sitevault/internal/extractor"
	"sitevault/internal/services"
)

type scriptedExecutor struct {
	output []byte
	err    error
	block  bool

	gotBinary string
	gotArgs   []string
}

func (s *scriptedExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	s.gotBinary = binary
	s.gotArgs = args
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.output, s.err
}

func TestExtractParsesExifToolOutput(t *testing.T) {
	exec := &scriptedExecutor{output: []byte(`[{
		"SourceFile": "/staging/ab.jpg",
		"Make": "NIKON CORPORATION",
		"Model": "NIKON D850",
		"ISO": 200,
		"ExposureTime": 0.004,
		"FlashFired": false,
		"Keywords": ["site", "survey"]
	}]`)}
	tool, err := extractor.NewExifToolWithOptions("exiftool", 30, extractor.WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewExifToolWithOptions: %v", err)
	}

	result, err := tool.Extract(context.Background(), "/staging/ab.jpg")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if exec.gotBinary != "exiftool" {
		t.Fatalf("binary = %q", exec.gotBinary)
	}
	wantArgs := []string{"-json", "-n", "--", "/staging/ab.jpg"}
	if len(exec.gotArgs) != len(wantArgs) {
		t.Fatalf("args = %v", exec.gotArgs)
	}
	for i, arg := range wantArgs {
		if exec.gotArgs[i] != arg {
			t.Fatalf("args[%d] = %q, want %q", i, exec.gotArgs[i], arg)
		}
	}

	if got := result.Fields.Make(); got != "NIKON CORPORATION" {
		t.Fatalf("Make = %q", got)
	}
	if got := result.Fields.Model(); got != "NIKON D850" {
		t.Fatalf("Model = %q", got)
	}
	if got := result.Fields["ISO"]; got != "200" {
		t.Fatalf("ISO = %q", got)
	}
	if got := result.Fields["ExposureTime"]; got != "0.004" {
		t.Fatalf("ExposureTime = %q", got)
	}
	if got := result.Fields["FlashFired"]; got != "false" {
		t.Fatalf("FlashFired = %q", got)
	}
	if got := result.Fields["Keywords"]; got != `["site","survey"]` {
		t.Fatalf("Keywords = %q", got)
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("raw output should be preserved")
	}
}

func TestExtractTimesOut(t *testing.T) {
	tool, err := extractor.NewExifToolWithOptions("exiftool", 1, extractor.WithExecutor(&scriptedExecutor{block: true}))
	if err != nil {
		t.Fatalf("NewExifToolWithOptions: %v", err)
	}

	_, err = tool.Extract(context.Background(), "/staging/slow.mp4")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("error = %v", err)
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("error %v should carry the timeout marker", err)
	}
}

func TestExtractSurfacesToolFailure(t *testing.T) {
	exec := &scriptedExecutor{err: errors.New("exit status 1: File format error")}
	tool, err := extractor.NewExifToolWithOptions("exiftool", 30, extractor.WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewExifToolWithOptions: %v", err)
	}

	_, err = tool.Extract(context.Background(), "/staging/bad.jpg")
	if err == nil {
		t.Fatal("expected tool failure to surface")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("error %v should carry the external tool marker", err)
	}
}

func TestExtractRejectsMalformedOutput(t *testing.T) {
	cases := []struct {
		name   string
		output string
	}{
		{"not json", "exiftool went wrong"},
		{"empty array", "[]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := &scriptedExecutor{output: []byte(tc.output)}
			tool, err := extractor.NewExifToolWithOptions("exiftool", 30, extractor.WithExecutor(exec))
			if err != nil {
				t.Fatalf("NewExifToolWithOptions: %v", err)
			}
			if _, err := tool.Extract(context.Background(), "/staging/x.jpg"); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestFieldsFallBackAcrossTagSpellings(t *testing.T) {
	fields := extractor.Fields{"DeviceManufacturer": "DJI", "CameraModelName": "FC3582"}
	if got := fields.Make(); got != "DJI" {
		t.Fatalf("Make = %q", got)
	}
	if got := fields.Model(); got != "FC3582" {
		t.Fatalf("Model = %q", got)
	}

	lowered := extractor.Fields{"make": "Apple", "model": "iPhone 15 Pro"}
	if got := lowered.Make(); got != "Apple" {
		t.Fatalf("case-insensitive Make = %q", got)
	}
}

func TestNewExifToolValidation(t *testing.T) {
	if _, err := extractor.NewExifTool("", 30); err == nil {
		t.Fatal("expected error for empty binary")
	}
	if _, err := extractor.NewExifTool("exiftool", 0); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}
