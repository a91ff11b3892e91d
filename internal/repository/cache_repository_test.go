package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "timetable:", nil)
	ctx := context.Background()

	var dest map[string]string
	err := repo.Get(ctx, "2024-ODD:CSE-A", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "2024-ODD:CSE-A", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "2024-ODD:*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.Equal(t, "timetable:x", repo.key("x"))
}
