// Package irradiance estimates average solar irradiation at a point on the
// Earth with a simplified geometric model of the sun's position. There is no
// atmospheric attenuation and every day is sampled at whole UTC hours, so the
// results are only useful for comparing places and seasons with each other.
package irradiance
