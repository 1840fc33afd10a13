// Package benefit converts verified service and contribution records into
// monetary entitlements. Everything here is pure and O(1).
package benefit
