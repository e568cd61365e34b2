package util

import (
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/ferreyrapanozzo/dental-clinic-api/model"
)

const treatmentListKey = "treatments:all"

var treatmentCache *cache.Cache

// InitTreatmentCache initializes the in-memory cache backing the public
// treatment catalog listing. If ttl <= 0 a default of 5 minutes is used.
func InitTreatmentCache(ttl time.Duration) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	treatmentCache = cache.New(ttl, 10*time.Minute)
}

// GetCachedTreatments returns the cached catalog listing, if present.
func GetCachedTreatments() ([]model.Treatment, bool) {
	if treatmentCache == nil {
		return nil, false
	}
	if v, ok := treatmentCache.Get(treatmentListKey); ok {
		if treatments, ok := v.([]model.Treatment); ok {
			return treatments, true
		}
	}
	return nil, false
}

// SetCachedTreatments stores the catalog listing with the default TTL.
func SetCachedTreatments(treatments []model.Treatment) {
	if treatmentCache == nil {
		return
	}
	treatmentCache.Set(treatmentListKey, treatments, cache.DefaultExpiration)
}

// InvalidateTreatmentCache drops the cached listing. Called after any
// catalog mutation.
func InvalidateTreatmentCache() {
	if treatmentCache == nil {
		return
	}
	treatmentCache.Delete(treatmentListKey)
}
