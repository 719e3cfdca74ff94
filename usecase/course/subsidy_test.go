package course

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/learner-portal/domain"
)

const (
	subsidyTypeA domain.SubsidyType = "a"
	subsidyTypeB domain.SubsidyType = "b"
)

func validPayload(id string) domain.SubsidyPayload {
	return domain.SubsidyPayload{"uuid": id, "startDate": "2024-01-01", "expirationDate": "2024-12-31"}
}

func TestResolveUserSubsidyPrefersPriorityOverCompletionOrder(t *testing.T) {
	bDone := make(chan struct{})

	sources := []SubsidySource{
		{Type: subsidyTypeA, Fetch: func(ctx context.Context) (domain.SubsidyPayload, error) {
			// A only answers once B has already answered.
			<-bDone
			return validPayload("a"), nil
		}},
		{Type: subsidyTypeB, Fetch: func(ctx context.Context) (domain.SubsidyPayload, error) {
			defer close(bDone)
			return validPayload("b"), nil
		}},
	}

	subsidy := newUseCase(newFakePlatform()).ResolveUserSubsidy(context.Background(), sources)
	require.NotNil(t, subsidy)
	assert.Equal(t, subsidyTypeA, subsidy.Type)
	assert.Equal(t, "a", subsidy.Payload["uuid"])
}

func TestResolveUserSubsidyFallsThroughToLowerPriority(t *testing.T) {
	tests := map[string]SubsidySource{
		"failed": {Type: subsidyTypeA, Fetch: func(context.Context) (domain.SubsidyPayload, error) {
			return nil, errors.New("no license")
		}},
		"expired": {Type: subsidyTypeA, Fetch: func(context.Context) (domain.SubsidyPayload, error) {
			return domain.SubsidyPayload{"startDate": "2023-01-01", "expirationDate": "2023-12-31"}, nil
		}},
		"no fetcher": {Type: subsidyTypeA},
	}

	for name, first := range tests {
		t.Run(name, func(t *testing.T) {
			sources := []SubsidySource{
				first,
				{Type: subsidyTypeB, Fetch: func(context.Context) (domain.SubsidyPayload, error) {
					return validPayload("b"), nil
				}},
			}

			subsidy := newUseCase(newFakePlatform()).ResolveUserSubsidy(context.Background(), sources)
			require.NotNil(t, subsidy)
			assert.Equal(t, subsidyTypeB, subsidy.Type)
		})
	}
}

func TestResolveUserSubsidyWaitsForEverySource(t *testing.T) {
	release := make(chan struct{})
	var slowFinished bool

	sources := []SubsidySource{
		{Type: subsidyTypeA, Fetch: func(context.Context) (domain.SubsidyPayload, error) {
			close(release)
			return nil, errors.New("rejected")
		}},
		{Type: subsidyTypeB, Fetch: func(context.Context) (domain.SubsidyPayload, error) {
			<-release
			slowFinished = true
			return nil, errors.New("rejected too")
		}},
	}

	subsidy := newUseCase(newFakePlatform()).ResolveUserSubsidy(context.Background(), sources)
	assert.Nil(t, subsidy)
	assert.True(t, slowFinished, "a rejection must not short-circuit the other sources")
}

func TestResolveUserSubsidyWithoutSources(t *testing.T) {
	assert.Nil(t, newUseCase(newFakePlatform()).ResolveUserSubsidy(context.Background(), nil))
}

func TestSelectSubsidyBoundaries(t *testing.T) {
	sources := []SubsidySource{{Type: domain.SubsidyTypeLicense}}

	startsNow := []SettledSubsidy{{Payload: domain.SubsidyPayload{
		"startDate": fixedNow.Format("2006-01-02T15:04:05Z07:00"), "expirationDate": "2024-12-31",
	}}}
	require.NotNil(t, SelectSubsidy(sources, startsNow, fixedNow))

	expiresNow := []SettledSubsidy{{Payload: domain.SubsidyPayload{
		"startDate": "2024-01-01", "expirationDate": fixedNow.Format("2006-01-02T15:04:05Z07:00"),
	}}}
	require.NotNil(t, SelectSubsidy(sources, expiresNow, fixedNow))

	expiredSecondAgo := []SettledSubsidy{{Payload: domain.SubsidyPayload{
		"startDate": "2024-01-01", "expirationDate": "2024-03-15T11:59:59Z",
	}}}
	assert.Nil(t, SelectSubsidy(sources, expiredSecondAgo, fixedNow))
}

func TestSelectSubsidyIsDeterministic(t *testing.T) {
	sources := []SubsidySource{{Type: subsidyTypeA}, {Type: subsidyTypeB}}
	settled := []SettledSubsidy{{Payload: validPayload("a")}, {Payload: validPayload("b")}}

	first := SelectSubsidy(sources, settled, fixedNow)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SelectSubsidy(sources, settled, fixedNow))
	}
	assert.Equal(t, subsidyTypeA, first.Type)
}
