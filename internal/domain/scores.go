// Package domain contains core business types and interfaces.
//
// This file defines the sub-score producers that feed Aggregate. Each
// returns 0-100 and returns MaxScore when there is nothing to measure.
package domain

import "time"

// Defect score penalties per unresolved defect.
const (
	DefectPenaltyCritical = 40
	DefectPenaltyMajor    = 20
	DefectPenaltyMinor    = 5
)

// InspectionScore is the share of answered items that passed in the most
// recent completed session. sessions may be in any order.
func InspectionScore(sessions []InspectionSession) int {
	var latest *InspectionSession
	for i := range sessions {
		s := &sessions[i]
		if s.Status != SessionStatusCompleted || s.CompletedDate == nil {
			continue
		}
		if latest == nil || s.CompletedDate.After(*latest.CompletedDate) {
			latest = s
		}
	}
	if latest == nil {
		return MaxScore
	}
	c := latest.Counts()
	return percent(c.Passed, c.Answered())
}

// MaintenanceScore is the share of non-cancelled work orders that are not
// overdue.
func MaintenanceScore(orders []WorkOrder, now time.Time) int {
	var total, onTime int
	for i := range orders {
		if orders[i].Status == WorkOrderStatusCancelled {
			continue
		}
		total++
		if !orders[i].IsOverdue(now) {
			onTime++
		}
	}
	return percent(onTime, total)
}

// DocumentScore is the share of current certificates that have not
// expired. Renewed certificates are ignored.
func DocumentScore(certs []Certificate, now time.Time) int {
	certs = CurrentCertificates(certs)
	var valid int
	for i := range certs {
		if !certs[i].IsExpired(now) {
			valid++
		}
	}
	return percent(valid, len(certs))
}

// DefectScore starts at 100 and subtracts a severity penalty for every
// unresolved defect, floored at 0.
func DefectScore(defects []DefectReport) int {
	score := MaxScore
	for i := range defects {
		if !defects[i].Status.IsUnresolved() {
			continue
		}
		switch defects[i].Severity {
		case DefectSeverityCritical:
			score -= DefectPenaltyCritical
		case DefectSeverityMajor:
			score -= DefectPenaltyMajor
		default:
			score -= DefectPenaltyMinor
		}
	}
	return clampScore(score)
}

// percent returns round(100*n/d), or MaxScore when d is zero.
func percent(n, d int) int {
	if d == 0 {
		return MaxScore
	}
	return clampScore((n*200 + d) / (2 * d))
}
