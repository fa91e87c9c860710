package jazzmate

import (
	"encoding/json"
	"sort"
	"strings"
)

// CriticsSummary is the structured AI summary attached to a critic review.
type CriticsSummary struct {
	Summary              string
	ArtistInfo           string
	AlbumInfo            string
	PerformanceNote      string
	CulturalContext      string
	Instrumentation      string
	CompositionInfluence string
	ReviewerOpinion      string
	Tracks               []TrackNote
}

// TrackNote is a per-track comment from the summary.
type TrackNote struct {
	Track string
	Note  string
}

type localizedText struct {
	Korean string `json:"korean"`
}

type summaryDocument struct {
	Summary    localizedText `json:"summary"`
	Categories struct {
		ArtistInfo           localizedText              `json:"artist_info"`
		AlbumInfo            localizedText              `json:"album_info"`
		PerformanceNote      localizedText              `json:"performance_note"`
		CulturalContext      localizedText              `json:"cultural_context"`
		Instrumentation      localizedText              `json:"instrumentation"`
		CompositionInfluence localizedText              `json:"composition_influence"`
		ReviewerOpinion      localizedText              `json:"reviewer_opinion"`
		TrackInfo            map[string]json.RawMessage `json:"track_info"`
	} `json:"categories"`
}

// ParseSummary decodes the review summary. It returns false when the summary
// is empty, not a JSON object, or malformed; those reviews are shown without a
// structured summary.
func (r CriticsReview) ParseSummary() (CriticsSummary, bool) {
	raw := strings.TrimSpace(r.ReviewSummary)
	if raw == "" || !strings.HasPrefix(raw, "{") {
		return CriticsSummary{}, false
	}
	var doc summaryDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return CriticsSummary{}, false
	}
	summary := CriticsSummary{
		Summary:              doc.Summary.Korean,
		ArtistInfo:           doc.Categories.ArtistInfo.Korean,
		AlbumInfo:            doc.Categories.AlbumInfo.Korean,
		PerformanceNote:      doc.Categories.PerformanceNote.Korean,
		CulturalContext:      doc.Categories.CulturalContext.Korean,
		Instrumentation:      doc.Categories.Instrumentation.Korean,
		CompositionInfluence: doc.Categories.CompositionInfluence.Korean,
		ReviewerOpinion:      doc.Categories.ReviewerOpinion.Korean,
	}
	names := make([]string, 0, len(doc.Categories.TrackInfo))
	for name := range doc.Categories.TrackInfo {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if note := trackNoteText(doc.Categories.TrackInfo[name]); note != "" {
			summary.Tracks = append(summary.Tracks, TrackNote{Track: name, Note: note})
		}
	}
	return summary, true
}

// Track notes are either {"korean": "..."} or a bare string.
func trackNoteText(raw json.RawMessage) string {
	var text localizedText
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text.Korean)
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain)
	}
	return ""
}
