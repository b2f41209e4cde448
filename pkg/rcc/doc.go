// Package rcc implements clock-tree management for the STM32L476: usage
// tracking for oscillators, buses and clocked peripherals, plus the driver
// sequences that bring each clock up and down.
//
// # Architecture
//
// All register traffic goes through an injected mmio.Bus; a RegisterFile
// binds the bus to a board profile's base addresses. The Tracker keeps
// per-resource usage counts and decides whether an acquire or release is
// permitted, reading dependency edges from live register state. The
// Controller owns both and implements the driver sequences (init, deinit,
// source selection, RTC bring-up) with rollback on failure.
//
// # Usage counting
//
// A resource's count combines direct holds and dependency pins: acquiring
// the PLL increments its source oscillator's count as well, so the source
// cannot be released while the PLL runs. Direct double-acquires are
// rejected; counts above one can only come from dependents.
//
// # Timeouts
//
// Every polling loop is bounded by an explicit iteration budget. The
// package never consults wall-clock time, so behavior is identical under
// simulation and on target.
//
// # Concurrency
//
// Tracker and Controller are not safe for concurrent use. The firmware
// executes all clock operations on its single main context; host-side
// tools must do the same.
package rcc
