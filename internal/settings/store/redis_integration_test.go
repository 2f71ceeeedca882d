//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"okkstats/internal/settings/store"
	"okkstats/pkg/platform/sentinel"
	"okkstats/pkg/testutil/containers"
)

type RedisRemoteSuite struct {
	suite.Suite
	remote *store.RedisRemote
}

func TestRedisRemoteSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	client := containers.NewRedis(t)
	s := new(RedisRemoteSuite)
	s.remote = store.NewRedisRemote(client, "okkstats:settings:test")
	suite.Run(t, s)
}

func (s *RedisRemoteSuite) TestLoadMissing() {
	_, err := s.remote.Load(context.Background())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisRemoteSuite) TestWriteLoadRoundTrip() {
	ctx := context.Background()
	payload := []byte(`{"years":[2024]}`)
	s.Require().NoError(s.remote.Write(ctx, payload))

	got, err := s.remote.Load(ctx)
	s.Require().NoError(err)
	s.Require().Equal(payload, got)
}

func (s *RedisRemoteSuite) TestWatchDeliversWrites() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.remote.Watch(ctx)
	s.Require().NoError(err)

	payload := []byte(`{"years":[2025]}`)
	s.Require().NoError(s.remote.Write(ctx, payload))

	select {
	case got := <-ch:
		s.Require().Equal(payload, got)
	case <-time.After(5 * time.Second):
		s.FailNow("no notification within 5s")
	}
}
