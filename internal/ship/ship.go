package ship

import "math/rand"

// ResourceTypes are the kinds of resources a ship can collect.
var ResourceTypes = []string{"iron", "crystal", "artifact"}

const (
	startFuel        = 100
	fuelLossPerMiss  = 10
	correctScore     = 100
	consolationScore = 10
	// Chance of still finding one resource on a wrong answer.
	consolationChance = 0.1
)

// State is the in-fiction progress record of one session's ship. It is never
// persisted.
type State struct {
	Fuel      int            `json:"fuel"`
	Resources map[string]int `json:"resources"`
	Score     int            `json:"score"`
}

// Event describes what an answer did to the ship.
type Event struct {
	Kind  string   `json:"event"`
	Found []string `json:"found"`
}

const (
	EventResourcesFound = "resources_found"
	EventFuelLost       = "fuel_lost"
)

func NewState() State {
	resources := make(map[string]int, len(ResourceTypes))
	for _, r := range ResourceTypes {
		resources[r] = 0
	}
	return State{
		Fuel:      startFuel,
		Resources: resources,
		Score:     0,
	}
}

// Apply is a pure transform of the ship state for one answered question. The
// random source is the only nondeterminism and is injected for testability.
// Correct answers find 1-3 resources and score 100; wrong answers burn fuel
// (floored at 0), score 10 and occasionally still yield one resource.
func Apply(state State, correct bool, rng *rand.Rand) (State, Event) {
	next := state
	next.Resources = make(map[string]int, len(state.Resources))
	for k, v := range state.Resources {
		next.Resources[k] = v
	}

	if correct {
		count := 1 + rng.Intn(3)
		found := make([]string, 0, count)
		for i := 0; i < count; i++ {
			r := ResourceTypes[rng.Intn(len(ResourceTypes))]
			found = append(found, r)
			next.Resources[r]++
		}
		next.Score += correctScore
		return next, Event{Kind: EventResourcesFound, Found: found}
	}

	next.Fuel -= fuelLossPerMiss
	if next.Fuel < 0 {
		next.Fuel = 0
	}
	next.Score += consolationScore

	found := []string{}
	if rng.Float64() < consolationChance {
		r := ResourceTypes[rng.Intn(len(ResourceTypes))]
		found = append(found, r)
		next.Resources[r]++
	}
	return next, Event{Kind: EventFuelLost, Found: found}
}
