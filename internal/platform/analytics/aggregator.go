package analytics

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/herdwatch/herdwatch/internal/domain/cases"
	"github.com/herdwatch/herdwatch/internal/domain/farmers"
	"github.com/herdwatch/herdwatch/internal/domain/livestock"
)

// UnknownSector is the fallback grouping key for records with no resolvable
// location.
const UnknownSector = "Unknown"

const (
	TrendImproving      = "Improving"
	TrendNeedsAttention = "Needs Attention"
)

// DiseaseTrend is the per-disease aggregate of case volume and resolution
// outcome.
type DiseaseTrend struct {
	Disease        string  `json:"disease"`
	Cases          int     `json:"cases"`
	Resolved       int     `json:"resolved"`
	ResolutionRate float64 `json:"resolution_rate"`
	Trend          string  `json:"trend"`
}

// MonthlyTrend is one YYYY-MM bucket of case volume.
type MonthlyTrend struct {
	Month    string `json:"month"`
	Cases    int    `json:"cases"`
	Resolved int    `json:"resolved"`
}

// SectorPerformance counts cases, distinct farmers and distinct livestock
// per geographic sector.
type SectorPerformance struct {
	Sector    string `json:"sector"`
	Cases     int    `json:"cases"`
	Farmers   int    `json:"farmers"`
	Livestock int    `json:"livestock"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// DiseaseTrends groups cases by suspected disease and derives a resolution
// rate per group. Improving requires a rate strictly above 50%. Output is
// sorted by case volume descending (name ascending on ties, so identical
// snapshots always order identically) and truncated to the top 10.
func DiseaseTrends(caseSet []*cases.Case) []DiseaseTrend {
	type acc struct {
		count    int
		resolved int
	}
	groups := make(map[string]*acc)
	for _, c := range caseSet {
		key := c.DiseaseKey()
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
		}
		g.count++
		if c.Status == cases.StatusResolved {
			g.resolved++
		}
	}

	out := make([]DiseaseTrend, 0, len(groups))
	for disease, g := range groups {
		rate := round1(float64(g.resolved) / float64(g.count) * 100)
		trend := TrendNeedsAttention
		if rate > 50 {
			trend = TrendImproving
		}
		out = append(out, DiseaseTrend{
			Disease:        disease,
			Cases:          g.count,
			Resolved:       g.resolved,
			ResolutionRate: rate,
			Trend:          trend,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Cases != out[j].Cases {
			return out[i].Cases > out[j].Cases
		}
		return out[i].Disease < out[j].Disease
	})
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// MonthlyTrends buckets cases by report month and returns the latest six
// non-empty buckets in chronological order. Months with no cases are absent
// rather than zero-filled; cases with a zero reportedAt are skipped.
func MonthlyTrends(caseSet []*cases.Case) []MonthlyTrend {
	type acc struct {
		count    int
		resolved int
	}
	buckets := make(map[string]*acc)
	for _, c := range caseSet {
		if c.ReportedAt.IsZero() {
			continue
		}
		key := c.ReportedAt.UTC().Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &acc{}
			buckets[key] = b
		}
		b.count++
		if c.Status == cases.StatusResolved {
			b.resolved++
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 6 {
		keys = keys[len(keys)-6:]
	}

	out := make([]MonthlyTrend, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthlyTrend{Month: k, Cases: buckets[k].count, Resolved: buckets[k].resolved})
	}
	return out
}

// caseSector resolves a case's sector through the documented fallback chain:
// reporter sector, the reporter's farmer-profile sector, the case's own
// sector field, then the free-text location notes.
func caseSector(c *cases.Case, farmerByID map[uuid.UUID]*farmers.Farmer) string {
	if c.ReporterSector != nil && *c.ReporterSector != "" {
		return *c.ReporterSector
	}
	if f, ok := farmerByID[c.ReporterID]; ok && f.Sector != "" {
		return f.Sector
	}
	if c.Sector != nil && *c.Sector != "" {
		return *c.Sector
	}
	if c.LocationNotes != nil && *c.LocationNotes != "" {
		return *c.LocationNotes
	}
	return UnknownSector
}

func farmerSector(f *farmers.Farmer) string {
	if f.Sector != "" {
		return f.Sector
	}
	return UnknownSector
}

// SectorPerformances aggregates per-sector case volume plus distinct-farmer
// and distinct-livestock counts. Three passes feed the same accumulators:
// cases credit the reporter, the farmer list credits every registered
// farmer, and livestock credit both the animal and its owner — so a farmer
// is counted once per sector no matter how many ways they appear. The
// Unknown sector is dropped only when it has nothing in it.
func SectorPerformances(caseSet []*cases.Case, farmerSet []*farmers.Farmer, animalSet []*livestock.Animal) []SectorPerformance {
	type acc struct {
		cases     int
		farmers   map[uuid.UUID]struct{}
		livestock map[uuid.UUID]struct{}
	}
	sectors := make(map[string]*acc)
	get := func(sector string) *acc {
		a, ok := sectors[sector]
		if !ok {
			a = &acc{
				farmers:   make(map[uuid.UUID]struct{}),
				livestock: make(map[uuid.UUID]struct{}),
			}
			sectors[sector] = a
		}
		return a
	}

	farmerByID := make(map[uuid.UUID]*farmers.Farmer, len(farmerSet))
	for _, f := range farmerSet {
		farmerByID[f.ID] = f
	}

	for _, c := range caseSet {
		a := get(caseSector(c, farmerByID))
		a.cases++
		if c.ReporterID != uuid.Nil {
			a.farmers[c.ReporterID] = struct{}{}
		}
	}

	for _, f := range farmerSet {
		get(farmerSector(f)).farmers[f.ID] = struct{}{}
	}

	for _, animal := range animalSet {
		sector := UnknownSector
		if owner, ok := farmerByID[animal.OwnerID]; ok {
			sector = farmerSector(owner)
		}
		a := get(sector)
		a.livestock[animal.ID] = struct{}{}
		if animal.OwnerID != uuid.Nil {
			a.farmers[animal.OwnerID] = struct{}{}
		}
	}

	out := make([]SectorPerformance, 0, len(sectors))
	for sector, a := range sectors {
		p := SectorPerformance{
			Sector:    sector,
			Cases:     a.cases,
			Farmers:   len(a.farmers),
			Livestock: len(a.livestock),
		}
		if sector == UnknownSector && p.Cases == 0 && p.Farmers == 0 && p.Livestock == 0 {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Cases != out[j].Cases {
			return out[i].Cases > out[j].Cases
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}
