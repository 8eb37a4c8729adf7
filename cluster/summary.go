package cluster

import "github.com/ThatSimPilot/ATCGroundPoint-AirportMap/airport"

// Summary describes one marker set: how many airports it covers, how
// they split between merged and individual markers, and the status
// distribution across everything shown.
type Summary struct {
	TotalAirports int                    `json:"totalAirports"`
	NumClusters   int                    `json:"numClusters"`
	NumSingle     int                    `json:"numSinglePoints"`
	ByStatus      map[airport.Status]int `json:"byStatus"`
}

// Summarize aggregates a built marker set.
func Summarize(clusters []Cluster, singletons []airport.Airport) Summary {
	s := Summary{ByStatus: make(map[airport.Status]int)}

	for _, c := range clusters {
		s.NumClusters++
		s.TotalAirports += c.Count
		for status, n := range c.StatusCounts {
			s.ByStatus[status] += n
		}
	}
	for _, p := range singletons {
		s.NumSingle++
		s.TotalAirports++
		s.ByStatus[p.Status]++
	}
	return s
}
