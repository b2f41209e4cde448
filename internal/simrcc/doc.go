// Package simrcc implements a behavioral simulation of the STM32L476 RCC
// and PWR register blocks behind the mmio.Bus interface.
//
// The simulation advances one tick per bus access, so driver poll budgets
// translate directly into simulated time. Oscillator ready flags follow
// their enable bits after a configurable latency, the system clock switch
// status follows the commanded source once that source is ready, and the
// backup-domain and PWR write protections are enforced the way the silicon
// does: writes to protected registers are silently dropped.
//
// Fault injection covers the failure paths the drivers implement: an
// oscillator that never reports ready and a system clock switch that never
// completes.
package simrcc
