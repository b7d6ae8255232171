// Package schedule assigns tasks to vehicles and orders them.
//
// The Evaluator decomposes one vehicle's ordered task list into depot round
// trips of minimum total duration. Search enumerates every task to vehicle
// map and every per-vehicle order, pruning against the best total found so
// far, until the enumeration is exhausted or the deadline expires. Format
// turns the winning plans into model.Route values.
package schedule
