// Package observer defines the contract between a simulation driver and
// its observers.
//
// A driver invokes every [Observer] synchronously at three lifecycle
// points: Start once, Step once per time increment, Stop once. Observers
// read named numeric variables off the driver's [Environment]; an absent
// name fails with [AttributeError].
//
// Returning [ErrClosed] from a hook asks the driver to end the run
// cleanly. It is the cooperative replacement for terminating the process
// when the user closes the plot surface.
package observer
