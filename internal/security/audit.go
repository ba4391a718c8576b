// Package security inspects the permissions of key files and the hosts file.
package security

import (
	"fmt"
	"os"
	"sort"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Finding struct {
	Severity       Severity
	Target         string
	Message        string
	Recommendation string
}

type Report struct {
	Findings []Finding
}

// HasHigh reports whether any finding would stop ssh from using the file.
func (r Report) HasHigh() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// AuditKeyFile checks that a private key exists and is not readable by group
// or others. OpenSSH refuses to use keys with broader permissions.
func AuditKeyFile(path string) Report {
	var findings []Finding
	if _, err := os.Stat(path); os.IsNotExist(err) {
		findings = append(findings, Finding{
			Severity:       SeverityHigh,
			Target:         path,
			Message:        "key file does not exist",
			Recommendation: "re-add the host with an existing key file",
		})
		return Report{Findings: findings}
	}
	checkPathPerm(&findings, path, 0o600, true, SeverityHigh)
	return Report{Findings: findings}
}

// AuditHostsFile checks the hosts record file and its directory.
func AuditHostsFile(path, dir string) Report {
	var findings []Finding
	checkPathPerm(&findings, dir, 0o700, false, SeverityMedium)
	checkPathPerm(&findings, path, 0o600, true, SeverityMedium)
	sortFindings(findings)
	return Report{Findings: findings}
}

func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return severityRank(findings[i].Severity) > severityRank(findings[j].Severity)
		}
		if findings[i].Target != findings[j].Target {
			return findings[i].Target < findings[j].Target
		}
		return findings[i].Message < findings[j].Message
	})
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

func checkPathPerm(findings *[]Finding, path string, max os.FileMode, isFile bool, sev Severity) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		*findings = append(*findings, Finding{
			Severity:       SeverityLow,
			Target:         path,
			Message:        fmt.Sprintf("unable to inspect permissions: %v", err),
			Recommendation: "verify path and permissions manually",
		})
		return
	}
	mode := st.Mode().Perm()
	if mode&^max != 0 {
		kind := "directory"
		if isFile {
			kind = "file"
		}
		*findings = append(*findings, Finding{
			Severity:       sev,
			Target:         path,
			Message:        fmt.Sprintf("%s permissions are too broad (%#o)", kind, mode),
			Recommendation: fmt.Sprintf("chmod %o %s", max, path),
		})
	}
}
