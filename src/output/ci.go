package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sofmeright/droidconf/src/lint"
)

// IsCI reports whether droidconf runs inside a CI job.
func IsCI() bool {
	return os.Getenv("CI") == "true"
}

// IsGitLabCI reports whether the job log understands collapsible sections.
func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

// SectionStart opens a GitLab log section. Outside GitLab it writes nothing.
func SectionStart(w io.Writer, id, name string) {
	sectionMarker(w, "section_start", id, name)
}

// SectionStartCollapsed opens a GitLab log section that starts folded.
func SectionStartCollapsed(w io.Writer, id, name string) {
	sectionMarker(w, "section_start", id+"[collapsed=true]", name)
}

// SectionEnd closes a GitLab log section.
func SectionEnd(w io.Writer, id string) {
	sectionMarker(w, "section_end", id, "")
}

func sectionMarker(w io.Writer, kind, id, name string) {
	if !IsGitLabCI() {
		return
	}
	fmt.Fprintf(w, "\033[0K%s:%d:%s\r\033[0K%s\n", kind, time.Now().Unix(), id, name)
}

// CIContext collects the pipeline identity shown above a CI run.
func CIContext() []KV {
	if !IsCI() {
		return nil
	}
	var kv []KV
	add := func(key, value string) {
		if value != "" {
			kv = append(kv, KV{Key: key, Value: value})
		}
	}
	sha := os.Getenv("CI_COMMIT_SHORT_SHA")
	if full := os.Getenv("CI_COMMIT_SHA"); sha == "" && len(full) >= 8 {
		sha = full[:8]
	}
	add("commit", sha)
	add("branch", firstEnv("CI_COMMIT_BRANCH", "CI_MERGE_REQUEST_SOURCE_BRANCH_NAME", "GITHUB_HEAD_REF"))
	add("pipeline", os.Getenv("CI_PIPELINE_ID"))
	add("runner", os.Getenv("CI_RUNNER_DESCRIPTION"))
	return kv
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// JUnit XML types for CI test reporting.

type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// BuildLintJUnit turns lint results into a JUnit report. Each module is a
// suite and each descriptor a test case; a case fails when its findings reach
// failOn.
func BuildLintJUnit(findings []lint.Finding, files []string, stats []lint.ModuleStats, failOn lint.Severity, elapsed time.Duration) JUnitTestSuites {
	byModule := make(map[string]map[string][]lint.Finding)
	for _, f := range findings {
		if byModule[f.Module] == nil {
			byModule[f.Module] = make(map[string][]lint.Finding)
		}
		byModule[f.Module][f.File] = append(byModule[f.Module][f.File], f)
	}

	root := JUnitTestSuites{Name: "droidconf-lint", Time: seconds(elapsed)}
	for _, ms := range stats {
		suite := JUnitTestSuite{Name: "droidconf/lint/" + ms.Name, Time: seconds(ms.Elapsed)}
		for _, file := range files {
			tc := JUnitTestCase{Name: file, Classname: "droidconf.lint." + ms.Name, Time: "0.000"}
			if ff := byModule[ms.Name][file]; len(ff) > 0 {
				worst := lint.SeverityInfo
				lines := make([]string, 0, len(ff))
				for _, f := range ff {
					if f.Severity > worst {
						worst = f.Severity
					}
					lines = append(lines, fmt.Sprintf("  %d [%s] %s", f.Line, f.Severity, f.Message))
				}
				if worst >= failOn {
					tc.Failure = &JUnitFailure{
						Message: fmt.Sprintf("%d finding(s) in %s", len(ff), file),
						Type:    worst.String(),
						Body:    strings.Join(lines, "\n"),
					}
					suite.Failures++
				}
			}
			suite.Cases = append(suite.Cases, tc)
			suite.Tests++
		}
		root.Tests += suite.Tests
		root.Failures += suite.Failures
		root.Suites = append(root.Suites, suite)
	}
	return root
}

// BuildValidateJUnit reports one case per descriptor; errs[i] belongs to files[i].
func BuildValidateJUnit(files []string, errs []error, elapsed time.Duration) JUnitTestSuites {
	suite := JUnitTestSuite{Name: "droidconf/validate", Time: seconds(elapsed)}
	for i, file := range files {
		tc := JUnitTestCase{Name: file, Classname: "droidconf.validate", Time: "0.000"}
		if err := errs[i]; err != nil {
			msg := Describe(err)
			kind, _, _ := strings.Cut(msg, ":")
			tc.Failure = &JUnitFailure{Message: msg, Type: kind, Body: err.Error()}
			suite.Failures++
		}
		suite.Cases = append(suite.Cases, tc)
		suite.Tests++
	}
	return JUnitTestSuites{
		Name:     "droidconf-validate",
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Time:     seconds(elapsed),
		Suites:   []JUnitTestSuite{suite},
	}
}

// WriteJUnit writes report to dir/name.
func WriteJUnit(dir, name string, report JUnitTestSuites) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	if _, err := io.WriteString(f, "\n"); err != nil {
		return err
	}
	return f.Close()
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

// PhaseResult prints a compact single-line phase summary.
func PhaseResult(w io.Writer, name, status, detail string, elapsed time.Duration, color bool) {
	fmt.Fprintf(w, "  %-10s %s  %-50s (%s)\n", name, StatusIcon(status, color), detail, elapsed.Round(time.Millisecond))
}
