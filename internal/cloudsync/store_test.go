package cloudsync

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/opensensor/stationd/internal/config"
	"github.com/opensensor/stationd/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreRejectsUnknownProvider(t *testing.T) {
	_, err := NewStore(config.Storage{Provider: "gcs", Bucket: "b"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidProvider, errors.CodeOf(err))
}

func TestNewStoreAcceptsKnownProviders(t *testing.T) {
	for provider := range providers {
		t.Run(provider, func(t *testing.T) {
			store, err := NewStore(config.Storage{
				Provider: provider,
				Bucket:   "sensor-data",
				Region:   "us-west-2",
				Endpoint: "http://localhost:9000",
			})
			require.NoError(t, err)
			assert.NotNil(t, store)
		})
	}
}

func TestNewStoreProviderNameIsCaseInsensitive(t *testing.T) {
	_, err := NewStore(config.Storage{Provider: "MinIO", Bucket: "b", Region: "us-west-2"})
	assert.NoError(t, err)
}

func TestRelativeKey(t *testing.T) {
	s := &s3Store{prefix: "stations/prod"}
	assert.Equal(t, "year=2024/data_1030.parquet", s.relativeKey("stations/prod/year=2024/data_1030.parquet"))
	assert.Equal(t, "stations/prod/year=2024/data_1030.parquet", s.remoteKey(s.relativeKey("stations/prod/year=2024/data_1030.parquet")))

	bare := &s3Store{}
	assert.Equal(t, "data_1030.parquet", bare.relativeKey("data_1030.parquet"))
	assert.Equal(t, "data_1030.parquet", bare.remoteKey("data_1030.parquet"))
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"op error", &net.OpError{Op: "dial", Err: fmt.Errorf("refused")}, true},
		{"dns error", &net.DNSError{Name: "s3.amazonaws.com", Err: "no such host"}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"aws request error", awserr.New("RequestError", "send request failed", nil), true},
		{"aws wrapped dial failure", awserr.New("SerializationError", "failed", &net.OpError{Op: "dial", Err: fmt.Errorf("refused")}), true},
		{"aws access denied", awserr.New("AccessDenied", "denied", nil), false},
		{"message shape", fmt.Errorf("read tcp: broken pipe"), true},
		{"unrelated", fmt.Errorf("bucket policy rejected the object"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNetworkError(tt.err))
		})
	}
}
