// Package srs holds the spaced-repetition engine: reading stored progress,
// scheduling the next review, writing the result back into a user's record
// and answering due queries. Everything here is pure; persistence and
// concurrency control belong to the caller.
package srs
