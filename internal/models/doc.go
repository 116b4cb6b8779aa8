// Package models defines the core domain models for settleup.
//
// # Models
//
//   - Group: a set of people who share expenses
//   - Member: one participant of a group, identified by user ID
//   - Expense: a shared cost paid by one member and split equally among
//     every current member of the group
//
// Monetary amounts use decimal.Decimal so that values read from storage or
// snapshots are never rounded through float64. The settlement engine in
// package calculator converts them to integer cents internally.
//
// Relationships are expressed with ID strings rather than pointers.
package models
