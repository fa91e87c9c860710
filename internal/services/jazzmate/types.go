package jazzmate

// Review is a user's listening review as returned by the backend.
type Review struct {
	ID              ID       `json:"id"`
	AlbumID         ID       `json:"albumId,omitempty"`
	UserID          string   `json:"userId,omitempty"`
	TrackName       string   `json:"trackName"`
	ArtistName      string   `json:"artistName"`
	ReviewContent   string   `json:"reviewContent"`
	Rating          float64  `json:"rating"`
	Mood            string   `json:"mood,omitempty"`
	Genre           string   `json:"genre,omitempty"`
	EnergyLevel     float64  `json:"energyLevel,omitempty"`
	BPM             int      `json:"bpm,omitempty"`
	VocalStyle      string   `json:"vocalStyle,omitempty"`
	Instrumentation string   `json:"instrumentation,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	IsPublic        bool     `json:"isPublic"`
	IsFeatured      bool     `json:"isFeatured,omitempty"`
	LikeCount       int      `json:"likeCount,omitempty"`
	CommentCount    int      `json:"commentCount,omitempty"`
	// Timestamps are local date-times without a zone; kept verbatim.
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// RecommendationRecord links a review to a recommended track.
type RecommendationRecord struct {
	ID           ID      `json:"id,omitempty"`
	UserReviewID ID      `json:"userReviewId,omitempty"`
	TrackID      ID      `json:"trackId"`
	Score        float64 `json:"recommendationScore"`
	Reason       string  `json:"recommendationReason"`
}

// ReviewWithRecommendations is the single-review payload including any
// generated recommendations.
type ReviewWithRecommendations struct {
	Review
	HasRecommendations bool                   `json:"hasRecommendations"`
	Recommendations    []RecommendationRecord `json:"recommendations"`
}

// Ready reports whether recommendations have been generated for the review.
func (r *ReviewWithRecommendations) Ready() bool {
	return r != nil && r.HasRecommendations && len(r.Recommendations) > 0
}

// Track is a catalog entry referenced by recommendations.
type Track struct {
	ID              ID      `json:"id"`
	AlbumID         ID      `json:"albumId,omitempty"`
	Title           string  `json:"trackTitle"`
	ArtistName      string  `json:"artistName"`
	Genre           string  `json:"genre,omitempty"`
	Mood            string  `json:"mood,omitempty"`
	Energy          float64 `json:"energy,omitempty"`
	BPM             int     `json:"bpm,omitempty"`
	VocalStyle      string  `json:"vocalStyle,omitempty"`
	Instrumentation string  `json:"instrumentation,omitempty"`
}

// Album is a search result or album detail.
type Album struct {
	ID              ID     `json:"id"`
	Artist          string `json:"albumArtist"`
	Title           string `json:"albumTitle"`
	Year            int    `json:"albumYear,omitempty"`
	Label           string `json:"albumLabel,omitempty"`
	TrackListing    string `json:"trackListing,omitempty"`
	CriticsReviewID ID     `json:"criticsReviewId,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
}

// CriticsReview is a published critic review with an optional AI summary.
type CriticsReview struct {
	ID            ID      `json:"id"`
	Title         string  `json:"title"`
	Reviewer      string  `json:"reviewer,omitempty"`
	Date          string  `json:"date,omitempty"`
	URL           string  `json:"url,omitempty"`
	Content       string  `json:"content,omitempty"`
	AlbumInfo     string  `json:"albumInfo,omitempty"`
	YoutubeInfo   string  `json:"youtubeInfo,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	TrackListing  string  `json:"trackListing,omitempty"`
	Personnel     string  `json:"personnel,omitempty"`
	ReviewSummary string  `json:"reviewSummary,omitempty"`
	CreatedAt     string  `json:"createdAt,omitempty"`
}

// CriticsPage is one page of critic reviews.
type CriticsPage struct {
	Content       []CriticsReview `json:"content"`
	TotalElements int             `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
	Size          int             `json:"size"`
	Number        int             `json:"number"`
	First         bool            `json:"first"`
	Last          bool            `json:"last"`
}

// ReviewQuery filters the review listing.
type ReviewQuery struct {
	UserID string
	Page   int
	Size   int
}
