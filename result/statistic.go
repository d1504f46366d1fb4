// SPDX-License-Identifier: MIT

package result

import (
	"math"

	json "github.com/goccy/go-json"
)

// Multivariate test names, in reporting order.
const (
	WilksLambda          = "Wilks' lambda"
	PillaiTrace          = "Pillai's trace"
	HotellingLawleyTrace = "Hotelling-Lawley trace"
	RoysGreatestRoot     = "Roy's greatest root"
)

// Statistic is one multivariate test row.
type Statistic struct {
	Name  string
	Value float64
	NumDF float64
	DenDF float64
	F     float64
	P     float64
}

// MarshalJSON writes non-finite numbers as null.
func (s Statistic) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string   `json:"name"`
		Value *float64 `json:"value"`
		NumDF *float64 `json:"num_df"`
		DenDF *float64 `json:"den_df"`
		F     *float64 `json:"f"`
		P     *float64 `json:"p"`
	}{s.Name, finite(s.Value), finite(s.NumDF), finite(s.DenDF), finite(s.F), finite(s.P)})
}

// UnmarshalJSON accepts the form written by MarshalJSON; null becomes NaN.
func (s *Statistic) UnmarshalJSON(b []byte) error {
	var aux struct {
		Name  string   `json:"name"`
		Value *float64 `json:"value"`
		NumDF *float64 `json:"num_df"`
		DenDF *float64 `json:"den_df"`
		F     *float64 `json:"f"`
		P     *float64 `json:"p"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*s = Statistic{Name: aux.Name, Value: orNaN(aux.Value), NumDF: orNaN(aux.NumDF),
		DenDF: orNaN(aux.DenDF), F: orNaN(aux.F), P: orNaN(aux.P)}

	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}

	return *p
}

// StatisticTable is the MANOVA payload. Statistics is keyed by test name; Order
// lists the names in reporting order.
type StatisticTable struct {
	Statistics    map[string]Statistic `json:"test_statistics"`
	Order         []string             `json:"order"`
	Columns       []string             `json:"columns"`
	GroupLabels   []string             `json:"group_labels"`
	GroupMeans    [][]float64          `json:"group_means"`
	GroupSizes    []int                `json:"group_sizes"`
	NGroups       int                  `json:"n_groups"`
	NObservations int                  `json:"n_observations"`
	NVariables    int                  `json:"n_variables"`
}

// Add appends s, keeping Order in insertion order.
func (t *StatisticTable) Add(s Statistic) {
	if t.Statistics == nil {
		t.Statistics = make(map[string]Statistic)
	}
	if _, ok := t.Statistics[s.Name]; !ok {
		t.Order = append(t.Order, s.Name)
	}
	t.Statistics[s.Name] = s
}

// Get returns the statistic with the given name.
func (t *StatisticTable) Get(name string) (Statistic, bool) {
	s, ok := t.Statistics[name]
	return s, ok
}

// Ordered returns the statistics in reporting order.
func (t *StatisticTable) Ordered() []Statistic {
	out := make([]Statistic, 0, len(t.Order))
	for _, name := range t.Order {
		out = append(out, t.Statistics[name])
	}

	return out
}
