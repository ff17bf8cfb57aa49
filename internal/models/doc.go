// Package models defines the core domain models for smakolyk.
//
// # Models
//
//   - MenuItem: one dish of the current weekly menu, in one of four categories
//   - PendingOrder: a user's dish selections for one day, awaiting the weekly aggregation
//   - HistoryRecord: immutable snapshot of a submitted order, with unit prices and total
//   - User / Profile: an account and its display data
//
// # Design Principles
//
// 1. **Composition over inheritance**: common id/timestamp fields live in EntityMeta,
// which every persisted record embeds
// 2. **Fixed categories**: a menu and an order always cover the same four categories,
// so per-category data is stored in arrays indexed by Category
// 3. **Integer money**: prices and totals are whole currency units (int64)
// 4. **IDs, not pointers**: relationships between records are expressed with ID strings
package models
