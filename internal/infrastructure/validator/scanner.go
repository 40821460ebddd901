package validator

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"iacforge/internal/infrastructure/metrics"
)

const (
	secretsScanTimeout = 60 * time.Second
	staticScanTimeout  = 120 * time.Second
	depsScanTimeout    = 60 * time.Second
)

// ScanFinding is one normalized finding from an external scanner.
type ScanFinding struct {
	Tool        string `json:"tool"`
	RuleID      string `json:"rule_id"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	File        string `json:"file,omitempty"`
	Line        int    `json:"line,omitempty"`
}

// ScanReport aggregates a full scan run. A tool that failed or is not
// installed appears in ToolsFailed and contributes no findings.
type ScanReport struct {
	Findings    []ScanFinding `json:"findings"`
	ToolsRun    []string      `json:"tools_run"`
	ToolsFailed []string      `json:"tools_failed"`
}

// Scanner fans out the external security tooling over a directory of
// generated configuration. Each tool is optional; partial results are still
// results.
type Scanner struct {
	runner CommandRunner
	logger *slog.Logger
}

func NewScanner(runner CommandRunner, logger *slog.Logger) *Scanner {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{runner: runner, logger: logger}
}

type scanJob struct {
	kind    string
	timeout time.Duration
	run     func(ctx context.Context, dir string) ([]ScanFinding, error)
}

// RunAll runs the secret, static and dependency scans concurrently and joins
// the results. Findings are ordered by tool so the report is stable.
func (s *Scanner) RunAll(ctx context.Context, dir string) ScanReport {
	jobs := []scanJob{
		{kind: "secrets", timeout: secretsScanTimeout, run: s.runGitleaks},
		{kind: "static", timeout: staticScanTimeout, run: s.runTfsec},
		{kind: "dependencies", timeout: depsScanTimeout, run: s.runTrivy},
	}

	var (
		mu     sync.Mutex
		report ScanReport
		wg     sync.WaitGroup
	)

	for _, job := range jobs {
		wg.Add(1)
		go func(job scanJob) {
			defer wg.Done()

			jobCtx, cancel := context.WithTimeout(ctx, job.timeout)
			defer cancel()

			findings, err := job.run(jobCtx, dir)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("security scan failed", "kind", job.kind, "error", err)
				metrics.IncScanRun(job.kind, "fail")
				report.ToolsFailed = append(report.ToolsFailed, job.kind)
				return
			}
			metrics.IncScanRun(job.kind, "pass")
			report.ToolsRun = append(report.ToolsRun, job.kind)
			report.Findings = append(report.Findings, findings...)
		}(job)
	}
	wg.Wait()

	sort.Strings(report.ToolsRun)
	sort.Strings(report.ToolsFailed)
	sort.SliceStable(report.Findings, func(i, j int) bool {
		return report.Findings[i].Tool < report.Findings[j].Tool
	})
	return report
}

func (s *Scanner) runGitleaks(ctx context.Context, dir string) ([]ScanFinding, error) {
	stdout, _, err := s.runner.Run(ctx, dir, "gitleaks", "detect", "--no-git", "--source", ".", "--report-format", "json", "--report-path", "/dev/stdout", "--exit-code", "0")
	if err != nil {
		return nil, err
	}

	var leaks []struct {
		RuleID      string `json:"RuleID"`
		Description string `json:"Description"`
		File        string `json:"File"`
		StartLine   int    `json:"StartLine"`
	}
	if err := json.Unmarshal([]byte(stdout), &leaks); err != nil {
		// Unparseable report means zero findings, not a failed tool.
		s.logger.Warn("gitleaks report unparseable", "error", err)
		return nil, nil
	}

	findings := make([]ScanFinding, 0, len(leaks))
	for _, leak := range leaks {
		findings = append(findings, ScanFinding{
			Tool:        "gitleaks",
			RuleID:      leak.RuleID,
			Severity:    "high",
			Description: leak.Description,
			File:        leak.File,
			Line:        leak.StartLine,
		})
	}
	return findings, nil
}

func (s *Scanner) runTfsec(ctx context.Context, dir string) ([]ScanFinding, error) {
	stdout, _, err := s.runner.Run(ctx, dir, "tfsec", ".", "--format", "json", "--soft-fail")
	if err != nil {
		return nil, err
	}

	var report struct {
		Results []struct {
			RuleID      string `json:"rule_id"`
			Severity    string `json:"severity"`
			Description string `json:"description"`
			Location    struct {
				Filename  string `json:"filename"`
				StartLine int    `json:"start_line"`
			} `json:"location"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		s.logger.Warn("tfsec report unparseable", "error", err)
		return nil, nil
	}

	findings := make([]ScanFinding, 0, len(report.Results))
	for _, res := range report.Results {
		findings = append(findings, ScanFinding{
			Tool:        "tfsec",
			RuleID:      res.RuleID,
			Severity:    res.Severity,
			Description: res.Description,
			File:        res.Location.Filename,
			Line:        res.Location.StartLine,
		})
	}
	return findings, nil
}

func (s *Scanner) runTrivy(ctx context.Context, dir string) ([]ScanFinding, error) {
	stdout, _, err := s.runner.Run(ctx, dir, "trivy", "fs", "--format", "json", "--quiet", ".")
	if err != nil {
		return nil, err
	}

	var report struct {
		Results []struct {
			Target          string `json:"Target"`
			Vulnerabilities []struct {
				VulnerabilityID string `json:"VulnerabilityID"`
				Severity        string `json:"Severity"`
				Title           string `json:"Title"`
			} `json:"Vulnerabilities"`
		} `json:"Results"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		s.logger.Warn("trivy report unparseable", "error", err)
		return nil, nil
	}

	var findings []ScanFinding
	for _, res := range report.Results {
		for _, vuln := range res.Vulnerabilities {
			findings = append(findings, ScanFinding{
				Tool:        "trivy",
				RuleID:      vuln.VulnerabilityID,
				Severity:    vuln.Severity,
				Description: vuln.Title,
				File:        res.Target,
			})
		}
	}
	return findings, nil
}
