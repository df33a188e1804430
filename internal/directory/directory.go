package directory

import (
	"context"
	"fmt"

	"github.com/five82/spotwatch/internal/monitor"
	"github.com/five82/spotwatch/internal/toplogger"
)

// Directory is the gym catalog loaded once at startup. It is owned by the
// startup code and must not be used concurrently with itself; resolution is
// finished before any polling begins.
type Directory struct {
	source toplogger.Directory
	gyms   []monitor.Gym
	areas  map[int64][]monitor.Area
}

// Load fetches the gym list from source.
func Load(ctx context.Context, source toplogger.Directory) (*Directory, error) {
	raw, err := source.FetchGyms(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch gyms: %w", err)
	}
	gyms := make([]monitor.Gym, 0, len(raw))
	for _, g := range raw {
		gyms = append(gyms, monitor.Gym{
			ID:        g.ID,
			IDName:    g.IDName,
			Slug:      g.Slug,
			Name:      g.Name,
			NameShort: g.NameShort,
		})
	}
	return &Directory{
		source: source,
		gyms:   gyms,
		areas:  make(map[int64][]monitor.Area),
	}, nil
}

// Gyms returns a copy of the catalog.
func (d *Directory) Gyms() []monitor.Gym {
	out := make([]monitor.Gym, len(d.gyms))
	copy(out, d.gyms)
	return out
}

// Resolve finds exactly one gym for gymQuery and exactly one of its areas for
// areaQuery.
func (d *Directory) Resolve(ctx context.Context, gymQuery, areaQuery string) (monitor.Gym, monitor.Area, error) {
	gym, err := d.ResolveGym(gymQuery)
	if err != nil {
		return monitor.Gym{}, monitor.Area{}, err
	}
	area, err := d.ResolveArea(ctx, gym, areaQuery)
	if err != nil {
		return monitor.Gym{}, monitor.Area{}, err
	}
	return gym, area, nil
}

// ResolveGym matches query against every identifying name of every gym.
func (d *Directory) ResolveGym(query string) (monitor.Gym, error) {
	hits := match(query, len(d.gyms), func(i int) []string {
		g := d.gyms[i]
		return []string{g.IDName, g.Slug, g.Name, g.NameShort}
	})
	switch len(hits) {
	case 1:
		return d.gyms[hits[0]], nil
	case 0:
		return monitor.Gym{}, &ResolutionError{Kind: NotFound, Subject: "gym", Query: query}
	default:
		names := make([]string, 0, len(hits))
		for _, i := range hits {
			names = append(names, fmt.Sprintf("%s (%d)", d.gyms[i].Name, d.gyms[i].ID))
		}
		return monitor.Gym{}, &ResolutionError{Kind: Ambiguous, Subject: "gym", Query: query, Candidates: names}
	}
}

// ResolveArea matches query against the area names of gym.
func (d *Directory) ResolveArea(ctx context.Context, gym monitor.Gym, query string) (monitor.Area, error) {
	areas, err := d.areasOf(ctx, gym.ID)
	if err != nil {
		return monitor.Area{}, err
	}
	hits := match(query, len(areas), func(i int) []string {
		return []string{areas[i].Name}
	})
	switch len(hits) {
	case 1:
		return areas[hits[0]], nil
	case 0:
		names := make([]string, 0, len(areas))
		for _, a := range areas {
			names = append(names, a.Name)
		}
		return monitor.Area{}, &ResolutionError{Kind: NotFound, Subject: "area", Query: query, Candidates: names}
	default:
		names := make([]string, 0, len(hits))
		for _, i := range hits {
			names = append(names, areas[i].Name)
		}
		return monitor.Area{}, &ResolutionError{Kind: Ambiguous, Subject: "area", Query: query, Candidates: names}
	}
}

func (d *Directory) areasOf(ctx context.Context, gymID int64) ([]monitor.Area, error) {
	if cached, ok := d.areas[gymID]; ok {
		return cached, nil
	}
	raw, err := d.source.FetchAreas(ctx, gymID)
	if err != nil {
		return nil, fmt.Errorf("fetch reservation areas for gym %d: %w", gymID, err)
	}
	areas := make([]monitor.Area, 0, len(raw))
	for _, a := range raw {
		areas = append(areas, monitor.Area{ID: a.ID, Name: a.Name, GymID: gymID})
	}
	d.areas[gymID] = areas
	return areas, nil
}
