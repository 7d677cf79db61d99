package service

import "github.com/avolkau/summit-api/internal/model"

// visibleTo reports whether a requester may see a resource with the given
// privacy and owner. FOLLOWERS_ONLY behaves like PRIVATE until a follower
// graph exists, kept as its own case so the gap stays visible.
func visibleTo(privacy model.Privacy, ownerID, requester string) bool {
	switch privacy {
	case model.PrivacyPublic:
		return true
	case model.PrivacyFollowersOnly:
		return requester != "" && requester == ownerID
	case model.PrivacyPrivate:
		return requester != "" && requester == ownerID
	}
	return false
}

func mountainToResponse(m *model.Mountain) model.MountainResponse {
	return model.MountainResponse{
		ID:            m.ID,
		Source:        m.Source,
		SourceID:      m.SourceID,
		Name:          m.Name,
		Coordinates:   model.Coordinate{Lat: m.Lat, Lon: m.Lon},
		Elevation:     m.Elevation,
		Timezone:      m.Timezone,
		WikipediaLink: m.WikipediaLink,
		Abstract:      m.Abstract,
	}
}

func mountainDistanceToResponse(md *model.MountainDistance) model.MountainResponse {
	resp := mountainToResponse(&md.Mountain)
	d := md.DistanceM
	resp.DistanceM = &d
	return resp
}

func ascentToResponse(a *model.Ascent) model.AscentResponse {
	resp := model.AscentResponse{
		ID:         a.ID,
		Date:       a.Date,
		DateOnly:   a.DateOnly,
		Privacy:    a.Privacy,
		UserID:     a.UserID,
		MountainID: a.MountainID,
		ActivityID: a.ActivityID,
	}
	if a.Mountain != nil {
		m := mountainToResponse(a.Mountain)
		resp.Mountain = &m
	}
	return resp
}

func activityToResponse(a *model.Activity) model.ActivityResponse {
	resp := model.ActivityResponse{
		ID:          a.ID,
		Source:      a.Source,
		SourceID:    a.SourceID,
		UserID:      a.UserID,
		Name:        a.Name,
		Date:        a.Date,
		TimeZone:    a.TimeZone,
		Privacy:     a.Privacy,
		Path:        a.Path,
		Description: a.Description,
	}
	for i := range a.Ascents {
		resp.Ascents = append(resp.Ascents, ascentToResponse(&a.Ascents[i]))
	}
	return resp
}

func listToResponse(l *model.List) model.ListResponse {
	resp := model.ListResponse{
		ID:          l.ID,
		Name:        l.Name,
		Private:     l.Private,
		Description: l.Description,
		OwnerID:     l.OwnerID,
	}
	for i := range l.Mountains {
		resp.Mountains = append(resp.Mountains, mountainToResponse(&l.Mountains[i]))
	}
	return resp
}
