// Package bills holds the pure functions applied to bill collections:
// ordering, status partitioning, receipt file validation and display formatting.
package bills
