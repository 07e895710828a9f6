package domain

// Reason is the AT Protocol notification reason — the category of the
// interaction that produced the notification.
type Reason string

const (
	ReasonLike              Reason = "like"
	ReasonRepost            Reason = "repost"
	ReasonFollow            Reason = "follow"
	ReasonMention           Reason = "mention"
	ReasonReply             Reason = "reply"
	ReasonQuote             Reason = "quote"
	ReasonStarterPackJoined Reason = "starterpack-joined"
	ReasonVerified          Reason = "verified"
	ReasonUnverified        Reason = "unverified"
	ReasonLikeViaRepost     Reason = "like-via-repost"
	ReasonRepostViaRepost   Reason = "repost-via-repost"
)

func (r Reason) String() string { return string(r) }

func (r Reason) IsValid() bool {
	switch r {
	case ReasonLike, ReasonRepost, ReasonFollow, ReasonMention, ReasonReply,
		ReasonQuote, ReasonStarterPackJoined, ReasonVerified, ReasonUnverified,
		ReasonLikeViaRepost, ReasonRepostViaRepost:
		return true
	}
	return false
}

// AggregationType classifies a timeline event by how it was clustered.
type AggregationType string

const (
	// AggregationPost is a single engagement on one post.
	AggregationPost AggregationType = "post"
	// AggregationFollow is one or more follows clustered in time.
	AggregationFollow AggregationType = "follow"
	// AggregationMixed is an unclustered leftover notification.
	AggregationMixed AggregationType = "mixed"
	// AggregationPostBurst is concentrated engagement on one post.
	AggregationPostBurst AggregationType = "post-burst"
	// AggregationUserActivity is a run of actions by one user.
	AggregationUserActivity AggregationType = "user-activity"
)

func (t AggregationType) String() string { return string(t) }

func (t AggregationType) IsValid() bool {
	switch t {
	case AggregationPost, AggregationFollow, AggregationMixed,
		AggregationPostBurst, AggregationUserActivity:
		return true
	}
	return false
}

// BurstIntensity grades how concentrated a post-engagement burst is.
type BurstIntensity string

const (
	BurstLow    BurstIntensity = "low"
	BurstMedium BurstIntensity = "medium"
	BurstHigh   BurstIntensity = "high"
)

func (b BurstIntensity) String() string { return string(b) }

func (b BurstIntensity) IsValid() bool {
	switch b {
	case BurstLow, BurstMedium, BurstHigh:
		return true
	}
	return false
}
