package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServiceTypeValid(t *testing.T) {
	assert.True(t, ServiceJira.Valid())
	assert.True(t, ServiceConfluence.Valid())
	assert.False(t, ServiceType("bitbucket").Valid())
	assert.False(t, ServiceType("").Valid())
}

func TestKnownServicesOrder(t *testing.T) {
	assert.Equal(t, []ServiceType{ServiceJira, ServiceConfluence}, KnownServices())
}

func TestNewCredential(t *testing.T) {
	cred := NewCredential(ServiceJira)
	assert.Equal(t, ServiceJira, cred.Service)
	assert.False(t, cred.IsAuthenticated)
	assert.Nil(t, cred.User)
	assert.False(t, cred.IsLoading)
	assert.Empty(t, cred.Error)
}

func TestSessionRecordExpired(t *testing.T) {
	now := time.Now()

	record := SessionRecord{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, record.Expired(now))

	record = SessionRecord{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, record.Expired(now))

	// Zero expiry never expires
	record = SessionRecord{}
	assert.False(t, record.Expired(now))
}
