// Package nominatim implements place name searches against OpenStreetMap's
// Nominatim geocoder. A successful search returns candidate places with a
// display name and coordinates, best match first.
package nominatim
