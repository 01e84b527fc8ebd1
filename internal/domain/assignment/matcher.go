package assignment

import (
	"sort"

	"github.com/herdwatch/herdwatch/internal/domain/cases"
	"github.com/herdwatch/herdwatch/internal/domain/vets"
)

// Candidate is a veterinarian annotated with locality match flags for the
// case being assigned.
type Candidate struct {
	Veterinarian  *vets.Veterinarian `json:"veterinarian"`
	SectorMatch   bool               `json:"sector_match"`
	DistrictMatch bool               `json:"district_match"`
}

// CandidateList is an ordered assignment shortlist. HasSectorMatch drives
// the caption stating whether any same-sector veterinarian exists.
type CandidateList struct {
	Candidates     []Candidate `json:"candidates"`
	HasSectorMatch bool        `json:"has_sector_match"`
}

// BuildCandidateList orders the pool for a case by geographic locality:
// same-sector veterinarians first, then same-district, then the rest. The
// sort is stable, so ties keep the pool's retrieval order — the repository
// retrieves by name, which keeps the overall ordering deterministic.
// Non-local_vet entries are dropped from the pool.
func BuildCandidateList(c *cases.Case, pool []*vets.Veterinarian) CandidateList {
	sector := ""
	if c.ReporterSector != nil {
		sector = *c.ReporterSector
	}
	district := ""
	if c.ReporterDistrict != nil {
		district = *c.ReporterDistrict
	}

	list := CandidateList{Candidates: make([]Candidate, 0, len(pool))}
	for _, v := range pool {
		if v.UserType != vets.TypeLocalVet {
			continue
		}
		cand := Candidate{
			Veterinarian:  v,
			SectorMatch:   sector != "" && v.Sector == sector,
			DistrictMatch: district != "" && v.District == district,
		}
		if cand.SectorMatch {
			list.HasSectorMatch = true
		}
		list.Candidates = append(list.Candidates, cand)
	}

	sort.SliceStable(list.Candidates, func(i, j int) bool {
		a, b := list.Candidates[i], list.Candidates[j]
		if a.SectorMatch != b.SectorMatch {
			return a.SectorMatch
		}
		if a.DistrictMatch != b.DistrictMatch {
			return a.DistrictMatch
		}
		return false
	})

	return list
}
