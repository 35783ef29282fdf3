package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPineconeIndexRequiresSettings(t *testing.T) {
	t.Setenv("PINECONE_INDEX", "from-env")
	t.Setenv("PINECONE_API_KEY", "from-env")
	ctx := context.Background()

	tests := []struct {
		name, apiKey, index, userID string
		wantErr                     string
	}{
		{"no user", "key", "notes", "", "user id"},
		{"no index", "key", "", "alice", "index name"},
		{"no api key", "", "notes", "alice", "API key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, err := GetPineconeIndex(ctx, tt.apiKey, tt.index, tt.userID)
			assert.Nil(t, index)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
