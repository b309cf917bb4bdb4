package output

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
	"github.com/sofmeright/droidconf/src/validate"
)

func sampleFindings() []lint.Finding {
	fs := []lint.Finding{
		{File: "b/app.droid.yml", Line: 4, Module: "signing", Severity: lint.SeverityWarning, Message: "release signed with debug key"},
		{File: "a/build.gradle.kts", Line: 26, Module: "identifier", Severity: lint.SeverityWarning, Message: "placeholder application id"},
		{File: "a/build.gradle.kts", Line: 3, Column: 7, Module: "validate", Severity: lint.SeverityCritical, Message: "InvalidSdkBounds"},
	}
	lint.SortFindings(fs)
	return fs
}

func TestSectionFindings(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Findings", 0, false)
	SectionFindings(sec, sampleFindings(), false)
	sec.Close()

	out := buf.String()
	for _, want := range []string{
		"── Findings ",
		"│ a/build.gradle.kts",
		"│   3:7      CRIT  validate    InvalidSdkBounds",
		"│   26       WARN  identifier  placeholder application id",
		"│ b/app.droid.yml",
		"└" + strings.Repeat("─", sectionWidth),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("uncolored output contains escape codes")
	}
	if strings.Index(out, "a/build.gradle.kts") > strings.Index(out, "b/app.droid.yml") {
		t.Error("files out of order")
	}
}

func TestFindingsSummaryLine(t *testing.T) {
	tally := Count(sampleFindings())
	if diff := cmp.Diff(Tally{Critical: 1, Warning: 2}, tally); diff != "" {
		t.Errorf("Count mismatch (-want +got):\n%s", diff)
	}
	if got, want := FindingsSummaryLine(tally, 2, false), "3 findings in 2 descriptors: 1 critical, 2 warning"; got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
	if got, want := FindingsSummaryLine(Tally{}, 5, false), "0 findings in 5 descriptors: no findings"; got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func TestHeaderWidth(t *testing.T) {
	var buf bytes.Buffer
	NewSection(&buf, "Lint", 1500*time.Millisecond, false)
	line := strings.TrimSpace(buf.String())
	if n := len([]rune(line)); n != sectionWidth+4 {
		t.Errorf("header is %d runes, want %d: %q", n, sectionWidth+4, line)
	}
	if !strings.HasSuffix(line, " 1.5s ──") {
		t.Errorf("header = %q", line)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "<1ms"},
		{42 * time.Millisecond, "42ms"},
		{2300 * time.Millisecond, "2.3s"},
		{90 * time.Second, "1m30.0s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{
			&validate.ConfigError{Kind: validate.InvalidIdentifier, Field: "applicationId", Message: "segment starts with a digit"},
			"InvalidIdentifier: applicationId: segment starts with a digit",
		},
		{
			fmt.Errorf("loading: %w", &descriptor.UnresolvedError{Field: "minSdk", Name: "flutter.minSdkVersion"}),
			`Unresolved: minSdk: toolchain variable "flutter.minSdkVersion" is not defined`,
		},
		{
			&descriptor.SyntaxError{File: "app.droid.yml", Line: 2, Column: 3, Msg: "unexpected ]"},
			"SyntaxError: app.droid.yml:2:3: unexpected ]",
		},
		{os.ErrNotExist, "file does not exist"},
	}
	for _, tt := range tests {
		if got := Describe(tt.err); got != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestValidationRows(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Validate", 0, false)
	ValidationRow(sec, "ok.droid.yml", nil, false)
	ValidationRow(sec, "bad.droid.yml", &validate.ConfigError{Kind: validate.EmptyFileReference, Field: "buildTypes.release.proguardFiles[1]", Message: "file reference is empty"}, false)
	sec.Separator()
	sec.Row("%s", ValidationSummaryLine(1, 1, false))
	sec.Close()

	if sec.Rows() != 4 {
		t.Errorf("Rows() = %d, want 4", sec.Rows())
	}
	out := buf.String()
	for _, want := range []string{
		"│ ✓ ok.droid.yml",
		"│ ✗ bad.droid.yml",
		"│     EmptyFileReference: buildTypes.release.proguardFiles[1]: file reference is empty",
		"│ 1 valid, 1 invalid of 2 descriptors",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLintJUnit(t *testing.T) {
	files := []string{"a/build.gradle.kts", "b/app.droid.yml"}
	stats := []lint.ModuleStats{{Name: "signing"}, {Name: "validate"}}
	report := BuildLintJUnit(sampleFindings(), files, stats, lint.SeverityCritical, time.Second)

	if report.Tests != 4 || report.Failures != 1 {
		t.Fatalf("tests=%d failures=%d, want 4 and 1", report.Tests, report.Failures)
	}
	signing := report.Suites[0]
	if signing.Failures != 0 || signing.Cases[1].Failure != nil {
		t.Error("warnings below fail_on must not fail the case")
	}
	failure := report.Suites[1].Cases[0].Failure
	if failure == nil || failure.Type != "critical" {
		t.Fatalf("validate case failure = %+v", failure)
	}

	strict := BuildLintJUnit(sampleFindings(), files, stats, lint.SeverityWarning, time.Second)
	if strict.Failures != 2 {
		t.Errorf("fail_on=warning failures = %d, want 2", strict.Failures)
	}

	dir := filepath.Join(t.TempDir(), "reports")
	if err := WriteJUnit(dir, "lint.xml", report); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "lint.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte(xml.Header)) {
		t.Error("missing xml header")
	}
	var back JUnitTestSuites
	if err := xml.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Name != "droidconf-lint" || len(back.Suites) != 2 || back.Suites[1].Name != "droidconf/lint/validate" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestValidateJUnit(t *testing.T) {
	errs := []error{nil, &validate.ConfigError{Kind: validate.InconsistentShrinkFlag, Field: "buildTypes.release.shrinkResources", Message: "requires minify"}}
	report := BuildValidateJUnit([]string{"ok.droid.yml", "bad.droid.yml"}, errs, time.Second)
	if report.Tests != 2 || report.Failures != 1 {
		t.Fatalf("tests=%d failures=%d", report.Tests, report.Failures)
	}
	f := report.Suites[0].Cases[1].Failure
	if f == nil || f.Type != "InconsistentShrinkFlag" {
		t.Errorf("failure = %+v", f)
	}
}

func TestSectionMarkersOutsideGitLab(t *testing.T) {
	t.Setenv("GITLAB_CI", "")
	var buf bytes.Buffer
	SectionStart(&buf, "dc_lint", "Lint")
	SectionEnd(&buf, "dc_lint")
	if buf.Len() != 0 {
		t.Errorf("wrote %q outside GitLab", buf.String())
	}

	t.Setenv("GITLAB_CI", "true")
	SectionStartCollapsed(&buf, "dc_lint", "Lint")
	if !strings.Contains(buf.String(), ":dc_lint[collapsed=true]\r") {
		t.Errorf("marker = %q", buf.String())
	}
}

func TestCIContext(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("CI_COMMIT_SHORT_SHA", "")
	t.Setenv("CI_COMMIT_SHA", "0123456789abcdef")
	t.Setenv("CI_COMMIT_BRANCH", "main")
	t.Setenv("CI_PIPELINE_ID", "")
	t.Setenv("CI_RUNNER_DESCRIPTION", "")
	want := []KV{{Key: "commit", Value: "01234567"}, {Key: "branch", Value: "main"}}
	if diff := cmp.Diff(want, CIContext()); diff != "" {
		t.Errorf("CIContext mismatch (-want +got):\n%s", diff)
	}
}
