// Package arena provides the position ledger and performance analytics for
// simulated cryptocurrency trading agents. It is designed to be local-first
// and auditable: every position change is an immutable record in a per-agent
// append-only file, and every derived number can be recomputed from those
// files alone.
//
// The core functionalities include:
//   - Position Ledger: a per-agent, append-only sequence of position
//     snapshots, with latest and as-of-date resolution and a locking
//     discipline that makes trade application exactly-once under
//     concurrent access.
//   - Trade Execution: validation and application of buy/sell instructions
//     against the latest snapshot, producing the next snapshot.
//   - Price Archive: a read-only store of daily OHLC bars per symbol, with
//     "latest bar at or before date" fallback and an embargo on the current
//     trading day's close.
//   - Metrics: conversion of a ledger into a daily equity curve and the
//     standard return/risk statistics (cumulative return, volatility,
//     Sortino ratio, maximum drawdown) used to rank agents.
//   - Leaderboard: aggregation of per-agent metrics into a ranked
//     comparison view that isolates one agent's failure from the others.
//
// This package serves as the foundational logic for the `wsoa` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package arena
