// Package domain models crowd-reported road hazards and the ports the
// client engine talks through.
//
// # Hazard Categories
//
// The category set is closed and fixed:
//
//	FLOODED_ROAD  water over the carriageway
//	TREE_DOWN     fallen tree or large limb blocking a road
//	OTHER         anything else; the only category that carries notes
//
// Values received from the store that are not in this set decode to
// [HazardUnknown] instead of failing, so a newer server can introduce
// categories without breaking older clients. Unknown hazards still render,
// using the fallback pin.
//
// # Wire Format
//
// The store returns hazards as a GeoJSON FeatureCollection of Point features.
// Coordinates follow GeoJSON order ([lng, lat]). Feature properties:
//
//	id          store-assigned identifier (string or number)
//	hazardType  category string, see above
//	notes       free text, empty unless hazardType is OTHER
//	createdAt   RFC 3339 timestamp
//	mag         optional heatmap magnitude
//
// Features appended optimistically by the client additionally carry
// pending=true and a client-generated localId, and have no id until the next
// refetch replaces them with the stored copy.
package domain
