package models

// SchemaVersion is the current persisted-collection schema. Version history:
//
//	1 — untagged records, no tenant scoping
//	2 — tenant ids on all entities
//	3 — oversized inline photo payloads tombstoned out of history
const SchemaVersion = 3

// PhotoTombstoneRef marks an inline payload that was dropped from a
// historical movement to reclaim local storage. The remote copy keeps the
// uploaded original.
const PhotoTombstoneRef = "removed_to_free_space"

// maxInlinePhotoBytes is the largest inline payload kept in a completed
// movement's persisted record.
const maxInlinePhotoBytes = 5000

// MigrateAccounts backfills tenant ids and roles on records persisted by
// older versions.
func MigrateAccounts(accounts []Account, defaultTenant string) []Account {
	out := make([]Account, len(accounts))
	for i, a := range accounts {
		if a.TenantID == "" {
			a.TenantID = defaultTenant
		}
		if a.Role == "" {
			a.Role = RoleInspector
		}
		out[i] = a
	}
	return out
}

// MigrateVehicles backfills tenant ids and normalizes missing statuses to in.
func MigrateVehicles(vehicles []Vehicle, defaultTenant string) []Vehicle {
	out := make([]Vehicle, len(vehicles))
	for i, v := range vehicles {
		if v.TenantID == "" {
			v.TenantID = defaultTenant
		}
		if v.Status == "" {
			v.Status = VehicleIn
		}
		out[i] = v
	}
	return out
}

// MigrateMovements backfills tenant ids and replaces oversized inline photo
// payloads in completed movements with a tombstone reference so historical
// records cannot crowd active ones out of local storage.
func MigrateMovements(movements []Movement, defaultTenant string) []Movement {
	out := make([]Movement, len(movements))
	for i, m := range movements {
		if m.TenantID == "" {
			m.TenantID = defaultTenant
		}
		if m.Status == MovementCompleted {
			m.Exit.Photos = tombstoneOversized(m.Exit.Photos)
			if m.Return != nil {
				ret := *m.Return
				ret.Photos = tombstoneOversized(ret.Photos)
				m.Return = &ret
			}
		}
		out[i] = m
	}
	return out
}

func tombstoneOversized(photos []Photo) []Photo {
	if len(photos) == 0 {
		return photos
	}
	out := make([]Photo, len(photos))
	for i, p := range photos {
		if p.Inline() && len(p.Data) > maxInlinePhotoBytes {
			p = Photo{Ref: PhotoTombstoneRef, CapturedAt: p.CapturedAt, Label: p.Label}
		}
		out[i] = p
	}
	return out
}
