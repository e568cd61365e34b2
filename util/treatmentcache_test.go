package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ferreyrapanozzo/dental-clinic-api/model"
)

func TestTreatmentCache_RoundTrip(t *testing.T) {
	InitTreatmentCache(time.Minute)
	t.Cleanup(InvalidateTreatmentCache)

	_, ok := GetCachedTreatments()
	assert.False(t, ok)

	treatments := []model.Treatment{
		{Name: "Dental cleaning", Price: 1500},
		{Name: "Whitening", Price: 4000},
	}
	SetCachedTreatments(treatments)

	got, ok := GetCachedTreatments()
	assert.True(t, ok)
	assert.Len(t, got, 2)
	assert.Equal(t, "Dental cleaning", got[0].Name)
}

func TestTreatmentCache_Invalidate(t *testing.T) {
	InitTreatmentCache(time.Minute)
	SetCachedTreatments([]model.Treatment{{Name: "Dental cleaning"}})

	InvalidateTreatmentCache()

	_, ok := GetCachedTreatments()
	assert.False(t, ok)
}

func TestTreatmentCache_UninitializedIsNoop(t *testing.T) {
	treatmentCache = nil

	SetCachedTreatments([]model.Treatment{{Name: "Dental cleaning"}})
	_, ok := GetCachedTreatments()
	assert.False(t, ok)
	InvalidateTreatmentCache()
}
