// Package monitor holds the resolved monitoring target, the slot lookup for a
// target and the classification of one polling cycle.
//
// An Outcome is a tagged variant: KindError carries the failure verbatim in
// Err, KindFull and KindAvailable carry the booked/total counts. Free is always
// Total - Booked for non-error outcomes; a slot reporting more booked than total
// spots is classified as an error rather than a negative free count.
package monitor
