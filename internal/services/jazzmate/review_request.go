package jazzmate

import (
	"fmt"
	"math"
	"strings"

	"jazzmate/internal/services"
)

// ReviewRequest is the body of a review submission. Optional numeric fields
// are pointers so an unset value is sent as null rather than zero.
type ReviewRequest struct {
	AlbumID         *ID      `json:"album_id"`
	UserID          string   `json:"user_id,omitempty"`
	TrackName       string   `json:"track_name"`
	ArtistName      string   `json:"artist_name"`
	ReviewContent   string   `json:"review_content"`
	Rating          *float64 `json:"rating"`
	Mood            string   `json:"mood,omitempty"`
	Genre           string   `json:"genre,omitempty"`
	EnergyLevel     *float64 `json:"energy_level"`
	BPM             *int     `json:"bpm"`
	VocalStyle      string   `json:"vocal_style,omitempty"`
	Instrumentation string   `json:"instrumentation,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	IsPublic        bool     `json:"is_public"`
}

// Validate checks the fields the backend requires before a round trip is
// spent on a request it would reject.
func (r ReviewRequest) Validate() error {
	var problems []string
	if strings.TrimSpace(r.TrackName) == "" {
		problems = append(problems, "track name is required")
	}
	if strings.TrimSpace(r.ArtistName) == "" {
		problems = append(problems, "artist name is required")
	}
	if strings.TrimSpace(r.ReviewContent) == "" {
		problems = append(problems, "review content is required")
	}
	if r.Rating != nil {
		rating := *r.Rating
		if rating < 0 || rating > 5 || math.Mod(rating*2, 1) != 0 {
			problems = append(problems, fmt.Sprintf("rating %.2f must be between 0 and 5 in 0.5 steps", rating))
		}
	}
	if r.EnergyLevel != nil && (*r.EnergyLevel < 0 || *r.EnergyLevel > 1) {
		problems = append(problems, fmt.Sprintf("energy level %.2f must be between 0 and 1", *r.EnergyLevel))
	}
	if r.BPM != nil && *r.BPM < 0 {
		problems = append(problems, fmt.Sprintf("bpm %d must not be negative", *r.BPM))
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "jazzmate", "validate review", strings.Join(problems, "; "), nil)
}

// Normalize trims text fields and drops empty tags.
func (r *ReviewRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.TrackName = strings.TrimSpace(r.TrackName)
	r.ArtistName = strings.TrimSpace(r.ArtistName)
	r.ReviewContent = strings.TrimSpace(r.ReviewContent)
	r.Mood = strings.TrimSpace(r.Mood)
	r.Genre = strings.TrimSpace(r.Genre)
	r.VocalStyle = strings.TrimSpace(r.VocalStyle)
	r.Instrumentation = strings.TrimSpace(r.Instrumentation)
	tags := r.Tags[:0:0]
	for _, tag := range r.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	r.Tags = tags
}

