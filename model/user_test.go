package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleProfessional))

	for _, bad := range []string{"", "admin", "User", "PROFESSIONAL"} {
		assert.False(t, ValidRole(bad), "role %q", bad)
	}
}

func TestUser_EmailUnique(t *testing.T) {
	db := setupTestDB(t, "user", &User{})

	first := User{Name: "Maria", Lastname: "F", Email: "maria@example.com", Role: RoleUser}
	assert.NoError(t, db.Create(&first).Error)

	dup := User{Name: "Other", Lastname: "G", Email: "maria@example.com", Role: RoleUser}
	assert.Error(t, db.Create(&dup).Error)
}

func TestUser_Defaults(t *testing.T) {
	db := setupTestDB(t, "user", &User{})

	user := User{Name: "Maria", Lastname: "F", Email: "maria@example.com"}
	assert.NoError(t, db.Create(&user).Error)

	var stored User
	assert.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, RoleUser, stored.Role)
	assert.Equal(t, SessionClosed, stored.SessionState)
	assert.Equal(t, 0, stored.FailedAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestSeedProfessional_CreatesOnce(t *testing.T) {
	db := setupTestDB(t, "user", &User{})

	assert.NoError(t, SeedProfessional(db, "admin@clinic.com", "hash", "salt"))

	var count int64
	db.Model(&User{}).Where("role = ?", RoleProfessional).Count(&count)
	assert.Equal(t, int64(1), count)

	// A second call is a no-op while a professional exists.
	assert.NoError(t, SeedProfessional(db, "other@clinic.com", "hash", "salt"))
	db.Model(&User{}).Where("role = ?", RoleProfessional).Count(&count)
	assert.Equal(t, int64(1), count)
}
