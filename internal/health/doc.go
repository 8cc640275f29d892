// Package health tracks backend failures and derives the healthy set on
// demand. Absence of a failure record means healthy; a recorded failure
// suppresses a backend until the recovery window elapses. Records live only
// for the lifetime of the owning process.
package health
