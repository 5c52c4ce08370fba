// Package models contains the database-backed domain entities of the
// diploma portal: students, courses, enrollments, and the diploma ledger.
package models

// DiplomaStatus is the lifecycle status of an issued diploma.
// VALID is the initial state; VOID and VALID are freely interchangeable
// through the void/restore transitions.
type DiplomaStatus string

const (
	DiplomaStatusValid DiplomaStatus = "VALID"
	DiplomaStatusVoid  DiplomaStatus = "VOID"
)
