package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/blockcache/blockstore"
	"github.com/hupe1980/blockcache/blockstore/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var _ object.Client = (*Client)(nil)

func TestClient_Get(t *testing.T) {
	mockClient := new(MockS3Client)
	client := NewClient(mockClient, "test-bucket", "prefix")

	t.Run("Success", func(t *testing.T) {
		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return *input.Bucket == "test-bucket" && *input.Key == "prefix/vol/0000000000000001"
		})).Return(&s3.GetObjectOutput{
			Body: io.NopCloser(strings.NewReader("payload")),
		}, nil).Once()

		data, err := client.Get(context.Background(), "vol/0000000000000001")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("NoSuchKey", func(t *testing.T) {
		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return *input.Key == "prefix/missing"
		})).Return(nil, &types.NoSuchKey{}).Once()

		_, err := client.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, blockstore.ErrNotFound)
	})

	t.Run("OtherError", func(t *testing.T) {
		boom := errors.New("throttled")
		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return *input.Key == "prefix/err"
		})).Return(nil, boom).Once()

		_, err := client.Get(context.Background(), "err")
		assert.ErrorIs(t, err, boom)
	})

	mockClient.AssertExpectations(t)
}

func TestClient_Put(t *testing.T) {
	mockClient := new(MockS3Client)
	client := NewClient(mockClient, "test-bucket", "prefix")

	var uploaded []byte
	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Bucket == "test-bucket" && *input.Key == "prefix/vol/0000000000000002"
	})).Run(func(args mock.Arguments) {
		input := args.Get(1).(*s3.PutObjectInput)
		uploaded, _ = io.ReadAll(input.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	err := client.Put(context.Background(), "vol/0000000000000002", []byte("block"))
	require.NoError(t, err)
	assert.Equal(t, "block", string(uploaded))
	mockClient.AssertExpectations(t)
}

func TestClient_List_Pagination(t *testing.T) {
	mockClient := new(MockS3Client)
	client := NewClient(mockClient, "test-bucket", "prefix/")

	// Page 1
	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken == nil && *input.Prefix == "prefix/vol/"
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("prefix/vol/0000000000000003")}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("token"),
	}, nil).Once()

	// Page 2
	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken != nil && *input.ContinuationToken == "token"
	})).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("prefix/vol/0000000000000001")}},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	keys, err := client.List(context.Background(), "vol/")
	require.NoError(t, err)
	assert.Equal(t, []string{"vol/0000000000000001", "vol/0000000000000003"}, keys)
	mockClient.AssertExpectations(t)
}
