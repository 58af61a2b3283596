package biz

import (
	"context"
	"errors"
	"io"
	"testing"

	"credit-service/internal/constants"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

func TestRecordWrapsRepoFailure(t *testing.T) {
	repo := newFakeUsageRepo()
	uc := NewUsageRecordUseCase(repo, log.NewStdLogger(io.Discard))

	repo.failNext = errors.New("insert failed")
	err := uc.Record(context.Background(), &UsageRecord{
		UserID:      "u1",
		Feature:     constants.FeatureTypeChat,
		CreditsUsed: 5,
	})
	require.Error(t, err)
	require.Empty(t, repo.recordsFor("u1"))

	// 下一次写入不受影响
	require.NoError(t, uc.Record(context.Background(), &UsageRecord{
		UserID:      "u1",
		Feature:     constants.FeatureTypeChat,
		CreditsUsed: 5,
	}))
	require.Len(t, repo.recordsFor("u1"), 1)
}
