// Package ui renders command results and asks the operator for confirmation.
package ui
