package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBlockedEmail(t *testing.T) {
	assert.True(t, IsBlockedEmail("chargeback.abuse@gmail.com"))
	assert.True(t, IsBlockedEmail("  ChargeBack.Abuse@GMAIL.com  "))
	assert.True(t, IsBlockedEmail("whoever@mailinator.com"))
	assert.True(t, IsBlockedEmail("x@10minutemail.com"))

	assert.False(t, IsBlockedEmail("regular@gmail.com"))
	assert.False(t, IsBlockedEmail("tempmail.com"))
	assert.False(t, IsBlockedEmail(""))
}
