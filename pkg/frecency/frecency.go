// Package frecency ranks sites by a blend of visit frequency and recency.
//
// Each sampled visit contributes the weight of its age bucket multiplied by a
// bonus for how the visit happened. The sampled total is then scaled up to the
// site's full visit count so heavily visited sites keep their advantage even
// though only the most recent visits are inspected.
package frecency

import (
	"sort"
	"time"

	"github.com/vanderheijden86/activitystream/pkg/model"
)

// SampleSize is the number of most recent visits inspected per site.
const SampleSize = 10

const day = 24 * time.Hour

// Bucket is an age cutoff and its weight.
type Bucket struct {
	MaxAge time.Duration
	Weight float64
}

// DefaultBuckets are checked in order; visits older than the last cutoff get
// OldVisitWeight.
var DefaultBuckets = []Bucket{
	{MaxAge: 4 * day, Weight: 100},
	{MaxAge: 14 * day, Weight: 70},
	{MaxAge: 31 * day, Weight: 50},
	{MaxAge: 90 * day, Weight: 30},
}

// OldVisitWeight applies to visits older than every bucket.
const OldVisitWeight = 10

// BucketWeight returns the weight for a visit of the given age.
func BucketWeight(age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	for _, b := range DefaultBuckets {
		if age <= b.MaxAge {
			return b.Weight
		}
	}
	return OldVisitWeight
}

// TypeBonus returns the percentage bonus for a visit type.
func TypeBonus(t model.VisitType) float64 {
	switch t {
	case model.VisitTyped:
		return 200
	case model.VisitBookmark:
		return 140
	case model.VisitEmbed, model.VisitPermanentRedirect, model.VisitTemporaryRedirect, model.VisitFramedLink:
		return 0
	default:
		return 100
	}
}

// Score computes the frecency of a site from its visits. totalVisits is the
// site's full visit count; visits may be any subset and in any order.
func Score(visits []model.Visit, totalVisits int, now time.Time) float64 {
	if len(visits) == 0 || totalVisits <= 0 {
		return 0
	}

	sample := make([]model.Visit, len(visits))
	copy(sample, visits)
	sort.Slice(sample, func(i, j int) bool { return sample[i].At.After(sample[j].At) })
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}

	var points float64
	for _, v := range sample {
		points += BucketWeight(now.Sub(v.At)) * TypeBonus(v.Type) / 100
	}
	if points == 0 {
		return 0
	}

	return points * float64(totalVisits) / float64(len(sample))
}

// Rank sorts sites by descending Frecency, breaking ties by most recent visit.
// The slice is sorted in place.
func Rank(sites []model.Site) {
	sort.SliceStable(sites, func(i, j int) bool {
		if sites[i].Frecency != sites[j].Frecency {
			return sites[i].Frecency > sites[j].Frecency
		}
		return sites[i].LastVisit.After(sites[j].LastVisit)
	})
}
