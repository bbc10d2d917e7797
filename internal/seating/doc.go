// Package seating holds the seat-assignment core: grid geometry, the
// shared shuffle primitive, the gender and desk-mate resolvers and the
// fill algorithm that composes them.  Everything here is pure apart
// from the randomness drawn through a Shuffler; persistence and
// logging live in the service layer.
package seating
