package listview

import (
	"fmt"
	"time"
)

type sample struct {
	Name    string
	Hash    string
	Status  string
	Created time.Time
}

func sampleSchema() Schema[sample] {
	return Schema[sample]{
		SearchFields: func(s sample) []string { return []string{s.Name, s.Hash} },
		Dimensions: []Dimension[sample]{
			{
				Name:    "status",
				Kind:    KindEnum,
				Options: []string{"Running", "Completed", "Failed"},
				Value:   func(s sample) string { return s.Status },
			},
			{
				Name: "dateFrom",
				Kind: KindDateFrom,
				Time: func(s sample) time.Time { return s.Created },
			},
			{
				Name: "dateTo",
				Kind: KindDateTo,
				Time: func(s sample) time.Time { return s.Created },
			},
		},
	}
}

func serverSchema() Schema[sample] {
	return Schema[sample]{
		ServerSearch: true,
		Dimensions: []Dimension[sample]{
			{Name: "status", Kind: KindEnum, Options: []string{"Running", "Failed"}, ServerSide: true, Lowercase: true},
			{Name: "incidentType", Param: "incident", Kind: KindEnum, ServerSide: true},
		},
	}
}

// samples returns n records cycling through the three statuses, one day apart
// starting 2024-03-01.
func samples(n int) []sample {
	statuses := []string{"Running", "Completed", "Failed"}
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	out := make([]sample, n)
	for i := range out {
		out[i] = sample{
			Name:    fmt.Sprintf("file-%02d.exe", i),
			Hash:    fmt.Sprintf("%064x", i),
			Status:  statuses[i%len(statuses)],
			Created: start.AddDate(0, 0, i),
		}
	}
	return out
}
