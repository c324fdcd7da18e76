// Package extensibility holds pluggable pieces for core.System: action
// runners, expression guards and external event sources.
package extensibility
