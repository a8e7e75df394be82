/*
Package domain holds the core vocabulary of the engine: node statuses and
kinds, port directions, the error taxonomy, and lifecycle events.

It has no dependencies on the rest of the module so every other package can
import it freely.
*/
package domain
