package model

import "time"

// Movie represents a film in the local catalog managed through the admin
// console.  The external catalog service is the source for discovery data;
// rows here carry whatever the admin chose to publish locally.
//
// Fields:
//  ID           – primary key identifier.
//  CatalogID    – id of the film in the external catalog (nullable).
//  Title        – display title.
//  Overview     – synopsis text.
//  PosterPath   – relative poster image path as served by the catalog CDN.
//  BackdropPath – relative backdrop image path (nullable).
//  ReleaseDate  – release date string as provided by the catalog.
//  VoteAverage  – catalog rating 0..10.
//  RuntimeMin   – runtime in minutes (nullable).
//  IsActive     – whether the movie is currently listed.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Movie struct {
	ID           uint64    `json:"id"`            // movies.id
	CatalogID    *uint64   `json:"catalog_id"`    // movies.catalog_id (nullable)
	Title        string    `json:"title"`         // movies.title
	Overview     string    `json:"overview"`      // movies.overview
	PosterPath   string    `json:"poster_path"`   // movies.poster_path
	BackdropPath *string   `json:"backdrop_path"` // movies.backdrop_path (nullable)
	ReleaseDate  string    `json:"release_date"`  // movies.release_date
	VoteAverage  float64   `json:"vote_average"`  // movies.vote_average
	RuntimeMin   *uint32   `json:"runtime"`       // movies.runtime_min (nullable)
	IsActive     bool      `json:"is_active"`     // movies.is_active
	CreatedAt    time.Time `json:"created_at"`    // movies.created_at
	UpdatedAt    time.Time `json:"updated_at"`    // movies.updated_at
}
