package loadbalancer

import "strings"

// Strategy selects how a backend is chosen from the healthy set.
type Strategy int

const (
	RoundRobin Strategy = iota
	Random
	LeastConnections
	WeightedRoundRobin
)

// ParseStrategy maps a configured strategy name to a Strategy. Matching is
// case-insensitive; unrecognized names fall back to round robin.
func ParseStrategy(name string) Strategy {
	switch strings.ToLower(name) {
	case "random":
		return Random
	case "least_connections":
		return LeastConnections
	case "weighted_round_robin":
		return WeightedRoundRobin
	default:
		return RoundRobin
	}
}

func (s Strategy) String() string {
	switch s {
	case Random:
		return "random"
	case LeastConnections:
		return "least_connections"
	case WeightedRoundRobin:
		return "weighted_round_robin"
	default:
		return "round_robin"
	}
}
